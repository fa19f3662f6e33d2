// Package preview compares an incoming export with the live configuration
// without changing either.
package preview

import (
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

// CreatePreview diffs incoming against current. incoming is assumed to have
// passed validation. A nil incoming yields an empty preview; a nil current,
// or one without stops, classifies every incoming stop as added and every
// setting as changed. Stops missing from incoming are never reported as
// removed.
func CreatePreview(incoming *models.ConfigExport, current *models.AppConfig) models.ImportPreview {
	p := models.ImportPreview{
		Stops:                 []models.StopConfig{},
		GlobalSettingsChanges: map[string]any{},
		Conflicts:             []models.ImportConflict{},
	}
	if incoming == nil {
		return p
	}

	currentByID := map[string]models.StopConfig{}
	if current != nil {
		for _, stop := range current.Stops {
			currentByID[stop.ID] = stop
		}
	}

	for _, stop := range incoming.Config.Stops {
		p.Stops = append(p.Stops, stop)

		existing, ok := currentByID[stop.ID]
		if !ok {
			p.EstimatedChanges.StopsAdded++
			continue
		}
		p.EstimatedChanges.StopsUpdated++

		if existing.Position != stop.Position {
			p.Conflicts = append(p.Conflicts, models.ImportConflict{
				Type:                models.ConflictPosition,
				Description:         models.ConflictPositionDescription,
				StopID:              stop.ID,
				SuggestedResolution: models.ConflictPositionResolution,
				Severity:            models.ConflictSeverityLow,
			})
		}
	}
	p.StopCount = len(p.Stops)

	for key, value := range settingChanges(incoming.Config, current) {
		p.GlobalSettingsChanges[key] = value
	}
	p.EstimatedChanges.SettingsChanged = len(p.GlobalSettingsChanges)

	return p
}

func settingChanges(incoming models.AppConfig, current *models.AppConfig) map[string]any {
	changes := map[string]any{}
	if current == nil || current.DarkMode != incoming.DarkMode {
		changes[models.SettingDarkMode] = incoming.DarkMode
	}
	if current == nil || current.RefreshIntervalSeconds != incoming.RefreshIntervalSeconds {
		changes[models.SettingRefreshIntervalSeconds] = incoming.RefreshIntervalSeconds
	}
	if current == nil || current.MaxDeparturesShown != incoming.MaxDeparturesShown {
		changes[models.SettingMaxDeparturesShown] = incoming.MaxDeparturesShown
	}
	if current == nil || current.Language != incoming.Language {
		changes[models.SettingLanguage] = incoming.Language
	}
	return changes
}

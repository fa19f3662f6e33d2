package validation

import (
	"math"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/utils"
)

// Decode narrows a tree that passed Validate into a typed ConfigExport. Every
// step is a checked assertion; anything that cannot be narrowed is reported
// and the partial export is discarded. Missing exportSettings default to
// including everything. Metadata must carry a stopCount.
func Decode(input any) (models.ConfigExport, []models.ValidationError) {
	d := &decoder{report: newReport(models.UnknownSchemaVersion)}

	envelope, ok := input.(map[string]any)
	if !ok {
		return models.ConfigExport{}, notAnExport().Errors
	}

	out := models.ConfigExport{
		SchemaVersion:   d.str(envelope, "schemaVersion", "schemaVersion", true),
		ExportTimestamp: d.str(envelope, "exportTimestamp", "exportTimestamp", false),
		ExportedBy:      d.str(envelope, "exportedBy", "exportedBy", false),
		ExportSettings:  models.DefaultExportSettings(),
	}

	if metadata, ok := d.object(envelope, "metadata", "metadata"); ok {
		out.Metadata.StopCount = d.integer(metadata, "stopCount", "metadata.stopCount")
		out.Metadata.Language = models.Language(d.str(metadata, "language", "metadata.language", false))
		out.Metadata.Source = d.str(metadata, "source", "metadata.source", false)
	}

	if config, ok := d.object(envelope, "config", configPath); ok {
		out.Config = d.appConfig(config)
	}

	if settings, ok := envelope["exportSettings"].(map[string]any); ok && isExportSettings(settings) {
		out.ExportSettings = models.ExportSettings{
			IncludeStops:    settings["includeStops"].(bool),
			IncludeSettings: settings["includeSettings"].(bool),
			IncludeMetadata: settings["includeMetadata"].(bool),
		}
	}

	if len(d.errors) > 0 {
		return models.ConfigExport{}, d.errors
	}
	return out, nil
}

type decoder struct {
	*report
}

func (d *decoder) appConfig(config map[string]any) models.AppConfig {
	out := models.AppConfig{
		DarkMode:               d.boolean(config, models.SettingDarkMode, models.JoinPath(configPath, models.SettingDarkMode)),
		RefreshIntervalSeconds: d.number(config, models.SettingRefreshIntervalSeconds, models.JoinPath(configPath, models.SettingRefreshIntervalSeconds)),
		MaxDeparturesShown:     d.number(config, models.SettingMaxDeparturesShown, models.JoinPath(configPath, models.SettingMaxDeparturesShown)),
		Language:               models.Language(d.str(config, models.SettingLanguage, models.JoinPath(configPath, models.SettingLanguage), true)),
		Stops:                  []models.StopConfig{},
	}

	raw, present := config["stops"]
	if !present {
		d.missing(stopsPath)
		return out
	}
	stops, ok := raw.([]any)
	if !ok {
		d.invalidType(stopsPath, raw, "array")
		return out
	}

	for i, entry := range stops {
		path := models.IndexPath(stopsPath, i)
		stop, ok := entry.(map[string]any)
		if !ok {
			d.invalidType(path, entry, "object")
			continue
		}
		out.Stops = append(out.Stops, models.StopConfig{
			ID:                 d.str(stop, "id", models.JoinPath(path, "id"), true),
			Name:               d.str(stop, "name", models.JoinPath(path, "name"), true),
			City:               models.City(d.str(stop, "city", models.JoinPath(path, "city"), true)),
			StopID:             d.str(stop, "stopId", models.JoinPath(path, "stopId"), true),
			WalkingTimeMinutes: d.number(stop, "walkingTimeMinutes", models.JoinPath(path, "walkingTimeMinutes")),
			Visible:            d.boolean(stop, "visible", models.JoinPath(path, "visible")),
			Position:           d.integer(stop, "position", models.JoinPath(path, "position")),
		})
	}
	return out
}

func (d *decoder) object(obj map[string]any, key, field string) (map[string]any, bool) {
	raw, present := obj[key]
	if !present {
		d.missing(field)
		return nil, false
	}
	out, ok := raw.(map[string]any)
	if !ok {
		d.invalidType(field, raw, "object")
	}
	return out, ok
}

func (d *decoder) str(obj map[string]any, key, field string, required bool) string {
	raw, present := obj[key]
	if !present {
		if required {
			d.missing(field)
		}
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		d.invalidType(field, raw, "string")
	}
	return s
}

func (d *decoder) number(obj map[string]any, key, field string) float64 {
	raw, present := obj[key]
	if !present {
		d.missing(field)
		return 0
	}
	f, ok := utils.AsNumber(raw)
	if !ok {
		d.invalidType(field, raw, "number")
	}
	return f
}

func (d *decoder) integer(obj map[string]any, key, field string) int {
	raw, present := obj[key]
	if !present {
		d.missing(field)
		return 0
	}
	f, ok := utils.AsNumber(raw)
	if !ok || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		d.invalidType(field, raw, "integer")
		return 0
	}
	return int(f)
}

func (d *decoder) boolean(obj map[string]any, key, field string) bool {
	raw, present := obj[key]
	if !present {
		d.missing(field)
		return false
	}
	b, ok := raw.(bool)
	if !ok {
		d.invalidType(field, raw, "boolean")
	}
	return b
}

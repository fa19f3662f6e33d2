package models

// ConflictType classifies an ImportConflict.
type ConflictType string

const (
	ConflictStopExists ConflictType = "stop_exists"
	ConflictPosition   ConflictType = "position_conflict"
	ConflictSetting    ConflictType = "setting_conflict"
)

// ConflictSeverity ranks how much attention a conflict needs.
type ConflictSeverity string

const (
	ConflictSeverityLow    ConflictSeverity = "low"
	ConflictSeverityMedium ConflictSeverity = "medium"
	ConflictSeverityHigh   ConflictSeverity = "high"
)

// ImportConflict is a difference between incoming and current data that does
// not invalidate the import but needs a resolution policy.
type ImportConflict struct {
	Type                ConflictType     `json:"type"`
	Description         string           `json:"description"`
	StopID              string           `json:"stopId,omitempty"`
	SuggestedResolution string           `json:"suggestedResolution"`
	Severity            ConflictSeverity `json:"severity"`
}

// EstimatedChanges counts what applying an import would change.
type EstimatedChanges struct {
	StopsAdded      int `json:"stopsAdded"`
	StopsUpdated    int `json:"stopsUpdated"`
	StopsRemoved    int `json:"stopsRemoved"`
	SettingsChanged int `json:"settingsChanged"`
}

// Global setting keys used in ImportPreview.GlobalSettingsChanges.
const (
	SettingDarkMode               = "darkMode"
	SettingRefreshIntervalSeconds = "refreshIntervalSeconds"
	SettingMaxDeparturesShown     = "maxDeparturesShown"
	SettingLanguage               = "language"
)

// ImportPreview summarizes an import against the current configuration.
type ImportPreview struct {
	StopCount             int              `json:"stopCount"`
	Stops                 []StopConfig     `json:"stops"`
	GlobalSettingsChanges map[string]any   `json:"globalSettingsChanges"`
	Conflicts             []ImportConflict `json:"conflicts"`
	EstimatedChanges      EstimatedChanges `json:"estimatedChanges"`
}

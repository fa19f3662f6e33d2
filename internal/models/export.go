package models

// ExportMetadata describes the exported payload. StopCount always equals
// len(Config.Stops).
type ExportMetadata struct {
	StopCount int      `json:"stopCount"`
	Language  Language `json:"language"`
	Source    string   `json:"source"`
}

// ExportSettings records what the user chose to include. Advisory only.
type ExportSettings struct {
	IncludeStops    bool `json:"includeStops"`
	IncludeSettings bool `json:"includeSettings"`
	IncludeMetadata bool `json:"includeMetadata"`
}

// DefaultExportSettings includes everything.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{IncludeStops: true, IncludeSettings: true, IncludeMetadata: true}
}

// ConfigExport is the versioned envelope written to export files.
type ConfigExport struct {
	SchemaVersion   string         `json:"schemaVersion"`
	ExportTimestamp string         `json:"exportTimestamp"`
	ExportedBy      string         `json:"exportedBy"`
	Metadata        ExportMetadata `json:"metadata"`
	Config          AppConfig      `json:"config"`
	ExportSettings  ExportSettings `json:"exportSettings"`
}

// SizeEstimate is the serialized size of an envelope.
type SizeEstimate struct {
	Bytes         int    `json:"bytes"`
	HumanReadable string `json:"humanReadable"`
}

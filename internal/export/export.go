// Package export builds versioned configuration envelopes and measures them.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/schema"
	"github.com/ironpinguin/departure-monitor-sub000/internal/utils"
)

// DefaultProducer is written to exportedBy and metadata.source unless
// overridden.
const DefaultProducer = "departure-monitor"

var ErrInconsistentMetadata = errors.New("export metadata is inconsistent with its configuration")

type options struct {
	now        func() time.Time
	exportedBy string
	source     string
	settings   models.ExportSettings
	schemas    *schema.Manager
}

type Option func(*options)

// WithClock sets the time source for exportTimestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithExportedBy(producer string) Option {
	return func(o *options) { o.exportedBy = producer }
}

func WithSource(source string) Option {
	return func(o *options) { o.source = source }
}

// WithSettings records which parts the user chose to include. The flags are
// copied verbatim and do not filter the payload.
func WithSettings(settings models.ExportSettings) Option {
	return func(o *options) { o.settings = settings }
}

func WithSchemaManager(m *schema.Manager) Option {
	return func(o *options) {
		if m != nil {
			o.schemas = m
		}
	}
}

// Build snapshots config into a new envelope stamped with the current schema
// version. metadata.stopCount is always derived from the stop list.
func Build(config models.AppConfig, opts ...Option) models.ConfigExport {
	o := options{
		now:        time.Now,
		exportedBy: DefaultProducer,
		source:     DefaultProducer,
		settings:   models.DefaultExportSettings(),
		schemas:    schema.DefaultManager(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	snapshot := config.Clone()
	if snapshot.Stops == nil {
		snapshot.Stops = []models.StopConfig{}
	}

	return models.ConfigExport{
		SchemaVersion:   o.schemas.CreateForExport(),
		ExportTimestamp: utils.FormatTimestamp(o.now()),
		ExportedBy:      o.exportedBy,
		Metadata: models.ExportMetadata{
			StopCount: len(snapshot.Stops),
			Language:  snapshot.Language,
			Source:    o.source,
		},
		Config:         snapshot,
		ExportSettings: o.settings,
	}
}

// ValidateExportData checks the invariants between the envelope's metadata
// and its payload.
func ValidateExportData(e models.ConfigExport) error {
	if e.Metadata.StopCount != len(e.Config.Stops) {
		return fmt.Errorf("%w: metadata.stopCount is %d but config has %d stops",
			ErrInconsistentMetadata, e.Metadata.StopCount, len(e.Config.Stops))
	}
	return nil
}

// EstimateSize measures the compact JSON encoding of e.
func EstimateSize(e models.ConfigExport) (models.SizeEstimate, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return models.SizeEstimate{}, fmt.Errorf("encoding export: %w", err)
	}
	return models.SizeEstimate{Bytes: len(b), HumanReadable: FormatBytes(len(b))}, nil
}

var units = []string{"KB", "MB", "GB", "TB"}

// FormatBytes renders n with 1024-based units, one decimal below 10 and none
// above.
func FormatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n)
	unit := ""
	for _, u := range units {
		value /= 1024
		unit = u
		if value < 1024 {
			break
		}
	}
	if value < 10 {
		return fmt.Sprintf("%.1f %s", value, unit)
	}
	return fmt.Sprintf("%.0f %s", value, unit)
}

// WriteJSON writes e as pretty-printed JSON with two-space indentation.
func WriteJSON(w io.Writer, e models.ConfigExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// FileName returns the download name for an export taken at t.
func FileName(t time.Time) string {
	return "departure-monitor-config-" + t.UTC().Format("2006-01-02") + ".json"
}

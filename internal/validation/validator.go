// Package validation decides whether an untrusted JSON tree is an acceptable
// configuration export. Results are values: malformed input never produces a
// Go error.
package validation

import (
	"strings"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/schema"
	"github.com/ironpinguin/departure-monitor-sub000/internal/security"
)

// StopReferences resolves external transit stop identifiers.
type StopReferences interface {
	Has(stopID string) bool
}

// Context selects which optional checks run.
type Context struct {
	// TargetVersion defaults to the manager's current version.
	TargetVersion string
	// Strict is reserved; validation is currently always lenient.
	Strict             bool
	CheckDuplicates    bool
	ValidateReferences bool
	DeepValidation     bool
}

// DefaultContext enables every optional check.
func DefaultContext() Context {
	return Context{
		CheckDuplicates:    true,
		ValidateReferences: true,
		DeepValidation:     true,
	}
}

type Validator struct {
	schemas    *schema.Manager
	references StopReferences
}

type Option func(*Validator)

func WithSchemaManager(m *schema.Manager) Option {
	return func(v *Validator) {
		if m != nil {
			v.schemas = m
		}
	}
}

// WithStopReferences enables INVALID_REFERENCE checks against refs.
func WithStopReferences(refs StopReferences) Option {
	return func(v *Validator) {
		v.references = refs
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{schemas: schema.DefaultManager()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the default validator with DefaultContext.
func Validate(input any) models.ValidationResult {
	return New().Validate(input, DefaultContext())
}

// Validate checks input in a fixed order: shape gate, security gate, schema
// version, app configuration, metadata and export settings. The two gates
// return early; every later stage accumulates.
func (v *Validator) Validate(input any, ctx Context) models.ValidationResult {
	envelope, ok := input.(map[string]any)
	if !ok {
		return notAnExport()
	}
	version, ok := envelope["schemaVersion"].(string)
	if !ok {
		return notAnExport()
	}

	if threats := security.Scan(envelope, security.RootPath); len(threats) > 0 {
		return models.InvalidResult(version, threats...)
	}

	r := newReport(version)

	compat := v.schemas.CheckCompatibility(version, ctx.TargetVersion)
	if !compat.IsSupported {
		r.errors = append(r.errors, models.ValidationError{
			Code:     models.ErrorUnsupportedVersion,
			Message:  models.MessageUnsupportedVersion,
			Field:    "schemaVersion",
			Value:    models.Excerpt(version),
			Expected: strings.Join(v.schemas.Supported(), ", "),
			Severity: models.SeverityCritical,
		})
	}
	r.warnings = append(r.warnings, compat.Warnings...)

	if config, present := envelope["config"]; present {
		v.validateAppConfig(r, config, ctx)
	} else {
		r.missing("config")
	}

	if metadata, present := envelope["metadata"]; !present {
		r.missing("metadata")
	} else if _, ok := metadata.(map[string]any); !ok {
		r.invalidType("metadata", metadata, "object")
	}

	if !isExportSettings(envelope["exportSettings"]) {
		r.warn(models.WarningDeprecatedField, models.MessageMissingExportOptions, "exportSettings",
			nil, "object with includeStops, includeSettings, includeMetadata", models.RecommendationExportSettings)
	}

	return r.result(compat.IsCompatible)
}

func notAnExport() models.ValidationResult {
	return models.InvalidResult(models.UnknownSchemaVersion, models.ValidationError{
		Code:     models.ErrorInvalidSchema,
		Message:  models.MessageNotAnExport,
		Field:    security.RootPath,
		Expected: "object with a string schemaVersion",
		Severity: models.SeverityCritical,
	})
}

func isExportSettings(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, key := range []string{"includeStops", "includeSettings", "includeMetadata"} {
		if _, ok := obj[key].(bool); !ok {
			return false
		}
	}
	return true
}

package validation

import (
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

// report accumulates errors and warnings in pass order.
type report struct {
	version  string
	errors   []models.ValidationError
	warnings []models.ValidationWarning
}

func newReport(version string) *report {
	return &report{
		version:  version,
		errors:   []models.ValidationError{},
		warnings: []models.ValidationWarning{},
	}
}

func (r *report) add(code models.ErrorCode, message, field string, value any, expected string) {
	r.errors = append(r.errors, models.ValidationError{
		Code:     code,
		Message:  message,
		Field:    field,
		Value:    diagnostic(value),
		Expected: expected,
		Severity: models.SeverityError,
	})
}

func (r *report) missing(field string) {
	r.add(models.ErrorMissingRequiredField, models.MessageMissingField, field, nil, "")
}

func (r *report) invalidType(field string, value any, expected string) {
	r.add(models.ErrorInvalidDataType, models.MessageInvalidType, field, value, expected)
}

func (r *report) outOfRange(field string, value any, expected string) {
	r.add(models.ErrorValueOutOfRange, models.MessageOutOfRange, field, value, expected)
}

func (r *report) warn(code models.WarningCode, message, field string, value any, expected, recommendation string) {
	r.warnings = append(r.warnings, models.ValidationWarning{
		Code:           code,
		Message:        message,
		Field:          field,
		Value:          diagnostic(value),
		Expected:       expected,
		Recommendation: recommendation,
	})
}

func (r *report) result(schemaCompatible bool) models.ValidationResult {
	valid := len(r.errors) == 0
	return models.ValidationResult{
		IsValid:       valid,
		Errors:        r.errors,
		Warnings:      r.warnings,
		SchemaVersion: r.version,
		IsCompatible:  valid && schemaCompatible,
	}
}

// diagnostic keeps scalar values and truncates strings. Composite values are
// dropped so errors never carry whole subtrees.
func diagnostic(v any) any {
	switch value := v.(type) {
	case string:
		return models.Excerpt(value)
	case float64, float32, int, int32, int64, bool:
		return value
	default:
		return nil
	}
}

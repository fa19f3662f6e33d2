package models

import (
	"fmt"
	"strings"
)

// ErrorCode classifies a validation failure.
type ErrorCode string

const (
	ErrorInvalidSchema        ErrorCode = "INVALID_SCHEMA"
	ErrorUnsupportedVersion   ErrorCode = "UNSUPPORTED_VERSION"
	ErrorInvalidStopConfig    ErrorCode = "INVALID_STOP_CONFIG"
	ErrorInvalidSettings      ErrorCode = "INVALID_SETTINGS"
	ErrorDuplicateStop        ErrorCode = "DUPLICATE_STOP"
	ErrorMissingRequiredField ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrorInvalidDataType      ErrorCode = "INVALID_DATA_TYPE"
	ErrorValueOutOfRange      ErrorCode = "VALUE_OUT_OF_RANGE"
	ErrorInvalidReference     ErrorCode = "INVALID_REFERENCE"
)

// WarningCode classifies a validation warning. Warnings never block an import.
type WarningCode string

const (
	WarningDeprecatedField      WarningCode = "DEPRECATED_FIELD"
	WarningPerformanceImpact    WarningCode = "PERFORMANCE_IMPACT"
	WarningCompatibilityIssue   WarningCode = "COMPATIBILITY_ISSUE"
	WarningUnusualConfiguration WarningCode = "UNUSUAL_CONFIGURATION"
)

// Severity of a ValidationError.
type Severity string

const (
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// UnknownSchemaVersion is reported when the input carries no usable version.
const UnknownSchemaVersion = "unknown"

// ValidationError is one blocking problem found in an import payload.
// Message is a translation key; Field, Value and Expected are its parameters.
type ValidationError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Field    string    `json:"field,omitempty"`
	Value    any       `json:"value,omitempty"`
	Expected string    `json:"expected,omitempty"`
	Severity Severity  `json:"severity"`
}

// ValidationWarning is a non-blocking remark about an import payload.
type ValidationWarning struct {
	Code           WarningCode `json:"code"`
	Message        string      `json:"message"`
	Field          string      `json:"field,omitempty"`
	Value          any         `json:"value,omitempty"`
	Expected       string      `json:"expected,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`
}

// ValidationResult is the outcome of validating an import payload.
type ValidationResult struct {
	IsValid       bool                `json:"isValid"`
	Errors        []ValidationError   `json:"errors"`
	Warnings      []ValidationWarning `json:"warnings"`
	SchemaVersion string              `json:"schemaVersion"`
	IsCompatible  bool                `json:"isCompatible"`
}

// NewValidationResult creates an empty, valid result for the given version.
func NewValidationResult(schemaVersion string) ValidationResult {
	return ValidationResult{
		IsValid:       true,
		Errors:        []ValidationError{},
		Warnings:      []ValidationWarning{},
		SchemaVersion: schemaVersion,
	}
}

// InvalidResult builds a failed result holding errs.
func InvalidResult(schemaVersion string, errs ...ValidationError) ValidationResult {
	result := NewValidationResult(schemaVersion)
	result.Errors = append(result.Errors, errs...)
	result.IsValid = len(result.Errors) == 0
	return result
}

// HasErrorCode reports whether any error carries code.
func (r ValidationResult) HasErrorCode(code ErrorCode) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// CountErrors returns how many errors carry code.
func (r ValidationResult) CountErrors(code ErrorCode) int {
	n := 0
	for _, e := range r.Errors {
		if e.Code == code {
			n++
		}
	}
	return n
}

// CountWarnings returns how many warnings carry code.
func (r ValidationResult) CountWarnings(code WarningCode) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}

// String returns a human-readable summary of the result.
func (r ValidationResult) String() string {
	if r.IsValid && len(r.Warnings) == 0 {
		return "Validation passed"
	}

	var sb strings.Builder
	if !r.IsValid {
		sb.WriteString(fmt.Sprintf("Validation failed with %d error(s)", len(r.Errors)))
		if len(r.Warnings) > 0 {
			sb.WriteString(fmt.Sprintf(" and %d warning(s)", len(r.Warnings)))
		}
		sb.WriteString(":\n")
	} else {
		sb.WriteString(fmt.Sprintf("Validation passed with %d warning(s):\n", len(r.Warnings)))
	}

	for _, e := range r.Errors {
		sb.WriteString(fmt.Sprintf("  [%s] %s", strings.ToUpper(string(e.Severity)), e.Code))
		if e.Field != "" {
			sb.WriteString(fmt.Sprintf(" (at %s)", e.Field))
		}
		sb.WriteString("\n")
	}
	for _, w := range r.Warnings {
		sb.WriteString(fmt.Sprintf("  [WARN] %s", w.Code))
		if w.Field != "" {
			sb.WriteString(fmt.Sprintf(" (at %s)", w.Field))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

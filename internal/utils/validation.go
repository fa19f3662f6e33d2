package utils

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/schema"
	"github.com/ironpinguin/departure-monitor-sub000/internal/security"
)

// TimestampLayout is the canonical ISO-8601 form used for export timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Patterns rejected in stop identifiers and names.
var sqlInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bDROP\s+TABLE\b`),
	regexp.MustCompile(`(?i)\bDELETE\s+FROM\b`),
	regexp.MustCompile(`(?i)\bINSERT\s+INTO\b`),
	regexp.MustCompile(`(?i)\bUNION\s+(ALL\s+)?SELECT\b`),
	regexp.MustCompile(`(?i)'\s*OR\s*'?1'?\s*=\s*'?1`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`/\*|\*/`),
	regexp.MustCompile(`;\s*$`),
}

// ContainsSQLInjection reports whether s matches one of the SQL injection
// patterns.
func ContainsSQLInjection(s string) bool {
	for _, p := range sqlInjectionPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// IsSafeIdentifier is true for non-blank strings free of script and SQL
// injection patterns.
func IsSafeIdentifier(v any) bool {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	return !security.ContainsThreat(s) && !ContainsSQLInjection(s)
}

// FormatTimestamp renders t in TimestampLayout, always in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// IsValidObject is true for a decoded JSON object.
func IsValidObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// IsValidString is true for a string with at least one non-space character.
func IsValidString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}

// AsNumber narrows v to a finite float64. Decoded JSON numbers are float64;
// the integer kinds are accepted for trees built in code.
func AsNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsValidNumber is true for a finite number.
func IsValidNumber(v any) bool {
	_, ok := AsNumber(v)
	return ok
}

// IsValidNumberInRange is true for a finite number within [min, max].
func IsValidNumberInRange(v any, min, max float64) bool {
	f, ok := AsNumber(v)
	return ok && f >= min && f <= max
}

// IsNonNegativeInteger is true for a finite whole number >= 0.
func IsNonNegativeInteger(v any) bool {
	f, ok := AsNumber(v)
	return ok && f >= 0 && f == math.Trunc(f)
}

func IsValidBoolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

func IsValidArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

// IsValidTimestamp is true only for strings that parse as ISO-8601 and
// format back to the identical string.
func IsValidTimestamp(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return false
	}
	return FormatTimestamp(t) == s
}

func IsValidCity(v any) bool {
	s, ok := v.(string)
	return ok && models.City(s).IsValid()
}

func IsValidLanguage(v any) bool {
	s, ok := v.(string)
	return ok && models.Language(s).IsValid()
}

// IsValidSchemaVersion is true for versions supported by this build.
func IsValidSchemaVersion(v any) bool {
	s, ok := v.(string)
	return ok && schema.DefaultManager().IsSupported(s)
}

type fieldCheck func(any) bool

var stopFieldChecks = map[string]fieldCheck{
	"id":     IsSafeIdentifier,
	"name":   isValidStopName,
	"city":   IsValidCity,
	"stopId": IsSafeIdentifier,
	"walkingTimeMinutes": func(v any) bool {
		return IsValidNumberInRange(v, models.MinWalkingTimeMinutes, models.MaxWalkingTimeMinutes)
	},
	"visible":  IsValidBoolean,
	"position": IsNonNegativeInteger,
}

var appFieldChecks = map[string]fieldCheck{
	"stops":    isValidStopList,
	"darkMode": IsValidBoolean,
	"refreshIntervalSeconds": func(v any) bool {
		return IsValidNumberInRange(v, models.MinRefreshIntervalSeconds, models.MaxRefreshIntervalSeconds)
	},
	"maxDeparturesShown": func(v any) bool {
		return IsValidNumberInRange(v, models.MinDeparturesShown, models.MaxDeparturesShown)
	},
	"language": IsValidLanguage,
}

func isValidStopName(v any) bool {
	s, ok := v.(string)
	return ok && len([]rune(s)) <= models.MaxStopNameLength && IsSafeIdentifier(s)
}

func isValidStopList(v any) bool {
	stops, ok := v.([]any)
	if !ok || len(stops) > models.MaxStops {
		return false
	}
	for _, s := range stops {
		if !IsValidStopConfig(s) {
			return false
		}
	}
	return true
}

func checkFields(v any, checks map[string]fieldCheck, requireAll bool) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for key, check := range checks {
		value, present := obj[key]
		if !present {
			if requireAll {
				return false
			}
			continue
		}
		if !check(value) {
			return false
		}
	}
	return true
}

// IsValidPartialStopConfig checks only the stop fields that are present.
func IsValidPartialStopConfig(v any) bool {
	return checkFields(v, stopFieldChecks, false)
}

// IsValidPartialAppConfig checks only the settings that are present. A
// present stop list must hold complete stops.
func IsValidPartialAppConfig(v any) bool {
	return checkFields(v, appFieldChecks, false)
}

func IsValidStopConfig(v any) bool {
	return checkFields(v, stopFieldChecks, true)
}

func IsValidAppConfig(v any) bool {
	return checkFields(v, appFieldChecks, true)
}

func isValidMetadata(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	return IsNonNegativeInteger(obj["stopCount"]) && IsValidLanguage(obj["language"])
}

func isValidExportSettings(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, key := range []string{"includeStops", "includeSettings", "includeMetadata"} {
		if !IsValidBoolean(obj[key]) {
			return false
		}
	}
	return true
}

// IsValidConfigExport checks a full envelope: supported version, canonical
// timestamp, metadata, export settings and a complete app config.
func IsValidConfigExport(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := obj["exportedBy"].(string); !ok {
		return false
	}
	return IsValidSchemaVersion(obj["schemaVersion"]) &&
		IsValidTimestamp(obj["exportTimestamp"]) &&
		isValidMetadata(obj["metadata"]) &&
		isValidExportSettings(obj["exportSettings"]) &&
		IsValidAppConfig(obj["config"])
}

// Package security scans untrusted JSON trees for script injection, code
// injection and suspicious URI schemes.
package security

import (
	"regexp"
	"sort"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

// RootPath is the path reported for the top-level value.
const RootPath = "root"

type family struct {
	name     string
	patterns []*regexp.Regexp
}

var families = []family{
	{
		name: "xss",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<\s*script\b[^>]*>`),
			regexp.MustCompile(`(?i)<\s*/\s*script\s*>`),
			regexp.MustCompile(`(?i)javascript\s*:`),
			regexp.MustCompile(`(?i)vbscript\s*:`),
			regexp.MustCompile(`(?i)data\s*:\s*text/html`),
			regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
		},
	},
	{
		name: "code_injection",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\beval\s*\(`),
			regexp.MustCompile(`\bFunction\s*\(`),
			regexp.MustCompile(`(?i)constructor`),
			regexp.MustCompile(`(?i)__proto__`),
			regexp.MustCompile(`(?i)\bprototype\b`),
		},
	},
	{
		name: "suspicious_protocol",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)file://`),
			regexp.MustCompile(`(?i)ftp://`),
			regexp.MustCompile(`(?i)ldap://`),
		},
	},
}

// Scan walks value and returns one error per pattern family matched by each
// string, whether the string is a value or an object key. Scanning continues
// across the whole tree. The input is never modified.
func Scan(value any, path string) []models.ValidationError {
	if path == "" {
		path = RootPath
	}
	var errs []models.ValidationError
	scanValue(value, path, &errs)
	return errs
}

// ContainsThreat reports whether s matches any pattern family.
func ContainsThreat(s string) bool {
	return len(scanString(s, "")) > 0
}

func scanValue(value any, path string, errs *[]models.ValidationError) {
	switch v := value.(type) {
	case string:
		*errs = append(*errs, scanString(v, path)...)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		// Stable ordering keeps the error list deterministic.
		sort.Strings(keys)
		for _, key := range keys {
			childPath := models.JoinPath(path, key)
			*errs = append(*errs, scanString(key, childPath)...)
			scanValue(v[key], childPath, errs)
		}
	case []any:
		for i, item := range v {
			scanValue(item, models.IndexPath(path, i), errs)
		}
	}
}

func scanString(s, path string) []models.ValidationError {
	var errs []models.ValidationError
	for _, fam := range families {
		for _, pattern := range fam.patterns {
			if !pattern.MatchString(s) {
				continue
			}
			errs = append(errs, models.ValidationError{
				Code:     models.ErrorInvalidDataType,
				Message:  models.MessageSecurityPattern,
				Field:    path,
				Value:    models.Excerpt(s),
				Expected: "content without " + fam.name + " patterns",
				Severity: models.SeverityCritical,
			})
			break
		}
	}
	return errs
}

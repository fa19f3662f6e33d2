// Package schema tracks the export envelope schema versions and classifies
// compatibility between them.
package schema

import (
	"strconv"
	"strings"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

// Schema versions understood by this build.
const (
	CurrentVersion = "1.0.0"
	MinimumVersion = "1.0.0"
)

// SupportedVersions always contains CurrentVersion.
var SupportedVersions = []string{CurrentVersion}

// Compatibility classifies a source version against a target version.
type Compatibility struct {
	IsCompatible      bool                       `json:"isCompatible"`
	RequiresMigration bool                       `json:"requiresMigration"`
	IsSupported       bool                       `json:"isSupported"`
	Warnings          []models.ValidationWarning `json:"warnings"`
}

// Manager holds a fixed set of versions. The zero value is not usable; use
// NewManager or DefaultManager.
type Manager struct {
	current   string
	minimum   string
	supported map[string]bool
	ordered   []string
}

// NewManager builds a Manager. current is added to supported if missing.
func NewManager(current, minimum string, supported []string) *Manager {
	m := &Manager{
		current:   current,
		minimum:   minimum,
		supported: make(map[string]bool, len(supported)+1),
	}
	for _, v := range append([]string{current}, supported...) {
		if !m.supported[v] {
			m.supported[v] = true
			m.ordered = append(m.ordered, v)
		}
	}
	return m
}

var defaultManager = NewManager(CurrentVersion, MinimumVersion, SupportedVersions)

// DefaultManager returns the Manager for the versions compiled into this build.
func DefaultManager() *Manager {
	return defaultManager
}

// Current returns the version stamped on new exports.
func (m *Manager) Current() string { return m.current }

// Minimum returns the oldest version that can still be read.
func (m *Manager) Minimum() string { return m.minimum }

// Supported returns the supported versions in registration order.
func (m *Manager) Supported() []string {
	out := make([]string, len(m.ordered))
	copy(out, m.ordered)
	return out
}

// IsSupported reports whether version is in the supported set.
func (m *Manager) IsSupported(version string) bool {
	return m.supported[version]
}

// CreateForExport returns the version for a new export. Exports are always
// produced in the current version.
func (m *Manager) CreateForExport() string {
	return m.current
}

// CheckCompatibility classifies source against target. An empty target means
// the current version.
func (m *Manager) CheckCompatibility(source, target string) Compatibility {
	if target == "" {
		target = m.current
	}

	c := Compatibility{
		IsSupported: m.IsSupported(source),
		Warnings:    []models.ValidationWarning{},
	}
	c.IsCompatible = source == target
	c.RequiresMigration = c.IsSupported && !c.IsCompatible

	if CompareVersions(source, target) < 0 {
		c.Warnings = append(c.Warnings, models.ValidationWarning{
			Code:           models.WarningCompatibilityIssue,
			Message:        models.MessageOutdatedVersion,
			Field:          "schemaVersion",
			Value:          models.Excerpt(source),
			Expected:       target,
			Recommendation: models.RecommendationUpdateExport,
		})
	}
	return c
}

// CompareVersions compares dot-separated numeric versions and returns -1, 0
// or 1. Missing trailing components count as zero; a non-numeric component
// counts by its leading digits.
func CompareVersions(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")

	n := len(pa)
	if len(pb) > n {
		n = len(pb)
	}

	for i := 0; i < n; i++ {
		va := component(pa, i)
		vb := component(pb, i)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
	}
	return 0
}

func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	s := strings.TrimSpace(parts[i])
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

package i18n

import (
	"sort"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

// RequiredImportKeys are the import dialog keys every catalog must provide.
var RequiredImportKeys = []string{
	"import.options.merge_strategy_description",
	"import.options.basic_options",
	"import.options.basic_options_description",
	"import.options.advanced_options_description",
	"import.options.summary_description",
	"import.progress.validation",
	"import.progress.validation_description",
	"import.progress.backup",
	"import.progress.backup_description",
	"import.progress.import",
	"import.progress.import_description",
	"import.progress.finalize",
	"import.progress.finalize_description",
	"import.dialog.progress_aria_label",
	"import.card.toggle_expand",
	"import.card.options_count",
	"import.preview.toggle_card",
	"import.preview.conflicts_subtitle",
	"import.preview.no_conflicts",
	"import.preview.stops_subtitle",
	"import.preview.view_all",
	"import.categories.settings",
	"import.categories.safety",
	"import.categories.filtering",
	"import.categories.layout",
	"import.categories.default",
	"import.loading.dialog",
	"import.loading.confirmation",
	"import.loading.preview",
	"import.loading.options",
	"import.loading.component_error",
	"import.loading.unknown_error",
}

// RequiredKeys is every key the service renders: the import dialog keys plus
// all validation and import messages.
func RequiredKeys() []string {
	keys := make([]string, 0, len(RequiredImportKeys)+len(models.MessageKeys))
	keys = append(keys, RequiredImportKeys...)
	return append(keys, models.MessageKeys...)
}

// MissingKeys returns the keys that c cannot translate, in input order.
func MissingKeys(c *Catalog, keys []string) []string {
	var missing []string
	for _, key := range keys {
		if !c.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// CatalogIssues lists the problems found in one catalog.
type CatalogIssues struct {
	Language   models.Language `json:"language"`
	Duplicates []string        `json:"duplicates,omitempty"`
	Empty      []string        `json:"empty,omitempty"`
	OnlyHere   []string        `json:"onlyHere,omitempty"`
	Missing    []string        `json:"missing,omitempty"`
}

func (ci CatalogIssues) Count() int {
	return len(ci.Duplicates) + len(ci.Empty) + len(ci.OnlyHere) + len(ci.Missing)
}

// ConsistencyReport compares two catalogs that should share one structure.
type ConsistencyReport struct {
	Common int           `json:"common"`
	A      CatalogIssues `json:"a"`
	B      CatalogIssues `json:"b"`
}

func (r ConsistencyReport) OK() bool {
	return r.A.Count() == 0 && r.B.Count() == 0
}

// CheckConsistency reports duplicate keys, blank values, keys present in only
// one catalog and required keys missing from either.
func CheckConsistency(a, b *Catalog, required []string) ConsistencyReport {
	onlyA, onlyB, common := diff(a.Keys(), b.Keys())
	return ConsistencyReport{
		Common: common,
		A: CatalogIssues{
			Language:   a.Language(),
			Duplicates: a.Duplicates(),
			Empty:      a.Empty(),
			OnlyHere:   onlyA,
			Missing:    MissingKeys(a, required),
		},
		B: CatalogIssues{
			Language:   b.Language(),
			Duplicates: b.Duplicates(),
			Empty:      b.Empty(),
			OnlyHere:   onlyB,
			Missing:    MissingKeys(b, required),
		},
	}
}

func diff(a, b []string) (onlyA, onlyB []string, common int) {
	inB := make(map[string]bool, len(b))
	for _, k := range b {
		inB[k] = true
	}
	inA := make(map[string]bool, len(a))
	for _, k := range a {
		inA[k] = true
		if inB[k] {
			common++
		} else {
			onlyA = append(onlyA, k)
		}
	}
	for _, k := range b {
		if !inA[k] {
			onlyB = append(onlyB, k)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return onlyA, onlyB, common
}

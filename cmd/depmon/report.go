package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/ironpinguin/departure-monitor-sub000/internal/i18n"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

var (
	okColor    = color.New(color.FgGreen)
	errColor   = color.New(color.FgRed)
	warnColor  = color.New(color.FgYellow)
	titleColor = color.New(color.Bold)
)

func printResult(w io.Writer, t i18n.Translator, result models.ValidationResult) {
	if result.IsValid {
		okColor.Fprintf(w, "✅ Valid export (schema %s)\n", result.SchemaVersion)
	} else {
		errColor.Fprintf(w, "❌ Invalid export (schema %s): %d error(s)\n", result.SchemaVersion, len(result.Errors))
	}

	for _, e := range result.Errors {
		errColor.Fprintf(w, "  [%s] %s", e.Code, e.Field)
		fmt.Fprintf(w, ": %s\n", i18n.ErrorMessage(t, e))
	}
	for _, warning := range result.Warnings {
		warnColor.Fprintf(w, "  [%s] %s", warning.Code, warning.Field)
		fmt.Fprintf(w, ": %s\n", i18n.WarningMessage(t, warning))
	}
}

func printPreview(w io.Writer, t i18n.Translator, p models.ImportPreview) {
	changes := p.EstimatedChanges
	titleColor.Fprintln(w, "Preview")
	fmt.Fprintf(w, "  stops: %d (%d added, %d updated, %d removed)\n",
		p.StopCount, changes.StopsAdded, changes.StopsUpdated, changes.StopsRemoved)
	fmt.Fprintf(w, "  settings changed: %d\n", changes.SettingsChanged)

	keys := make([]string, 0, len(p.GlobalSettingsChanges))
	for k := range p.GlobalSettingsChanges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "    %s → %v\n", k, p.GlobalSettingsChanges[k])
	}

	for _, c := range p.Conflicts {
		warnColor.Fprintf(w, "  [%s/%s] ", c.Type, c.Severity)
		fmt.Fprintln(w, i18n.ConflictMessage(t, c))
	}
}

func printIssues(w io.Writer, issues i18n.CatalogIssues) {
	if issues.Count() == 0 {
		okColor.Fprintf(w, "✅ %s: no problems found\n", issues.Language)
		return
	}
	errColor.Fprintf(w, "❌ %s: %d problem(s)\n", issues.Language, issues.Count())
	printKeys(w, "duplicate keys", issues.Duplicates)
	printKeys(w, "empty values", issues.Empty)
	printKeys(w, "only in this catalog", issues.OnlyHere)
	printKeys(w, "missing required keys", issues.Missing)
}

func printKeys(w io.Writer, label string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s (%d):\n", label, len(keys))
	for _, k := range keys {
		fmt.Fprintf(w, "    - %s\n", k)
	}
}

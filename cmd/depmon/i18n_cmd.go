package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironpinguin/departure-monitor-sub000/internal/i18n"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

func newI18nCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "i18n",
		Short: "Translation catalog tools",
	}
	cmd.AddCommand(newI18nCheckCmd())
	return cmd
}

func newI18nCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [DE.json EN.json]",
		Short: "Check two translation catalogs for consistency",
		Long: "Reports duplicate keys, empty values, keys present in only one catalog and " +
			"required keys missing from either. Without arguments the embedded catalogs are checked.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or two catalog files, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			de, en, err := loadCatalogs(args)
			if err != nil {
				return err
			}

			report := i18n.CheckConsistency(de, en, i18n.RequiredKeys())
			out := cmd.OutOrStdout()
			titleColor.Fprintf(out, "Common keys: %d\n", report.Common)
			printIssues(out, report.A)
			printIssues(out, report.B)
			if !report.OK() {
				return errRejected
			}
			return nil
		},
	}
}

func loadCatalogs(args []string) (de, en *i18n.Catalog, err error) {
	if len(args) == 0 {
		if de, err = i18n.Load(models.LanguageGerman); err != nil {
			return nil, nil, err
		}
		en, err = i18n.Load(models.LanguageEnglish)
		return de, en, err
	}
	if de, err = i18n.LoadFile(models.LanguageGerman, args[0]); err != nil {
		return nil, nil, err
	}
	en, err = i18n.LoadFile(models.LanguageEnglish, args[1])
	return de, en, err
}

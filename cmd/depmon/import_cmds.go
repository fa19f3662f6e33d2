package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironpinguin/departure-monitor-sub000/internal/export"
	"github.com/ironpinguin/departure-monitor-sub000/internal/i18n"
	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/store"
	"github.com/ironpinguin/departure-monitor-sub000/internal/transport"
)

func importFile(cmd *cobra.Command, imp *transport.Importer, path string, opts transport.ImportOptions) (transport.ImportOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return transport.ImportOutcome{}, err
	}
	defer logging.SafeCloseWithLogging(f, logging.FromContext(cmd.Context()), "read_import_file")

	info, err := f.Stat()
	if err != nil {
		return transport.ImportOutcome{}, err
	}
	return imp.ImportFile(cmd.Context(), transport.File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Body: f,
	}, opts), nil
}

func translator(lang string) (i18n.Translator, error) {
	return i18n.Load(models.Language(lang))
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var applyDefaults bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := translator(root.lang)
			if err != nil {
				return err
			}
			imp, release, err := root.importer(cmd)
			if err != nil {
				return err
			}
			defer release()

			outcome, err := importFile(cmd, imp, args[0], transport.ImportOptions{ApplyDefaults: applyDefaults})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), t, outcome.Result)
			if !outcome.Accepted() {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&applyDefaults, "apply-defaults", false, "fill missing stop visibility and position")
	return cmd
}

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var currentPath string

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show what importing an export file would change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := translator(root.lang)
			if err != nil {
				return err
			}
			imp, release, err := root.importer(cmd)
			if err != nil {
				return err
			}
			defer release()

			var current *models.AppConfig
			if currentPath != "" {
				s, err := openExisting(cmd, currentPath)
				if err != nil {
					return err
				}
				c := s.Current()
				current = &c
			}

			outcome, err := importFile(cmd, imp, args[0], transport.ImportOptions{Current: current})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printResult(out, t, outcome.Result)
			if !outcome.Accepted() {
				return errRejected
			}
			printPreview(out, t, *outcome.Preview)
			return nil
		},
	}
	cmd.Flags().StringVar(&currentPath, "current", "", "store file holding the current configuration")
	return cmd
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var storePath, strategyFlag string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Apply an export file to a store file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := store.ParseStrategy(strategyFlag)
			if err != nil {
				return err
			}
			t, err := translator(root.lang)
			if err != nil {
				return err
			}
			imp, release, err := root.importer(cmd)
			if err != nil {
				return err
			}
			defer release()

			s, err := store.Open(storePath, store.WithLogger(logging.FromContext(cmd.Context())))
			if err != nil {
				return err
			}
			current := s.Current()

			outcome, err := importFile(cmd, imp, args[0], transport.ImportOptions{Current: &current})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printResult(out, t, outcome.Result)
			if !outcome.Accepted() {
				return errRejected
			}
			printPreview(out, t, *outcome.Preview)

			applied, err := s.Apply(outcome.Export, strategy)
			if err != nil {
				return err
			}
			okColor.Fprintf(out, "Applied %s import: %d stops in %s\n", strategy, len(applied.Stops), storePath)
			return nil
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "store file to update")
	cmd.Flags().StringVar(&strategyFlag, "strategy", string(store.StrategyMerge), "merge or replace")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

func newExportCmd() *cobra.Command {
	var storePath, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configuration of a store file as an export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			logger := logging.FromContext(cmd.Context())
			s, err := openExisting(cmd, storePath)
			if err != nil {
				return err
			}
			e := buildExport(s)

			if outPath == "" {
				return export.WriteJSON(cmd.OutOrStdout(), e)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer logging.HandleDeferredError(&err, f.Close, logger, "write_export_file")
			if err := export.WriteJSON(f, e); err != nil {
				return err
			}
			okColor.Fprintf(cmd.ErrOrStderr(), "Exported %d stops to %s\n", e.Metadata.StopCount, outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "store file to export")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

func newSizeCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Estimate the size of an export of a store file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openExisting(cmd, storePath)
			if err != nil {
				return err
			}
			size, err := estimateExport(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", size.HumanReadable, size.Bytes)
			return nil
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "store file to measure")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

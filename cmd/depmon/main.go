// Command depmon validates, previews, imports and exports departure monitor
// configuration files.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ironpinguin/departure-monitor-sub000/internal/app"
	"github.com/ironpinguin/departure-monitor-sub000/internal/gtfs"
	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/transport"
	"github.com/ironpinguin/departure-monitor-sub000/internal/validation"
)

// errRejected makes the process exit non-zero after a report was printed.
var errRejected = errors.New("input rejected")

type rootOptions struct {
	verbose     bool
	maxFileSize int64
	gtfsURL     string
	lang        string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "depmon",
		Short:         "Manage departure monitor configuration exports",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := logging.NewStructuredLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.Int64Var(&opts.maxFileSize, "max-file-size", transport.DefaultMaxFileSize, "maximum import file size in bytes")
	flags.StringVar(&opts.gtfsURL, "gtfs-url", "", "GTFS zip (URL or path) used to check stop references")
	flags.StringVar(&opts.lang, "lang", string(models.LanguageEnglish), "language of report messages (de|en)")

	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newPreviewCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newExportCmd())
	root.AddCommand(newSizeCmd())
	root.AddCommand(newI18nCmd())

	return root
}

// importer builds the import pipeline for the persistent flags. The returned
// func releases the GTFS manager, if one was loaded.
func (o *rootOptions) importer(cmd *cobra.Command) (*transport.Importer, func(), error) {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	limits := transport.DefaultLimits()
	limits.MaxFileSize = o.maxFileSize

	var validatorOpts []validation.Option
	release := func() {}
	if o.gtfsURL != "" {
		manager, err := gtfs.InitGTFSManager(ctx, gtfs.Config{GtfsURL: o.gtfsURL, Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		validatorOpts = append(validatorOpts, validation.WithStopReferences(manager))
		release = manager.Shutdown
	}

	imp := transport.NewImporter(
		transport.WithValidator(validation.New(validatorOpts...)),
		transport.WithLimits(limits),
		transport.WithLogger(logger),
	)
	return imp, release, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRejected) {
			root.PrintErrln("Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

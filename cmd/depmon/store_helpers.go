package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironpinguin/departure-monitor-sub000/internal/export"
	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/store"
)

// Recorded in the metadata of CLI exports.
const (
	cliSource   = "cli"
	cliProducer = "depmon"
)

// openExisting opens a store file that must already exist.
func openExisting(cmd *cobra.Command, path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store.Open(path, store.WithLogger(logging.FromContext(cmd.Context())))
}

func buildExport(s *store.Store) models.ConfigExport {
	return export.Build(s.Current(),
		export.WithSource(cliSource),
		export.WithExportedBy(cliProducer))
}

func estimateExport(s *store.Store) (models.SizeEstimate, error) {
	return export.EstimateSize(buildExport(s))
}

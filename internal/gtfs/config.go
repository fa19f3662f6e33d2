package gtfs

import (
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	// GtfsURL is an http(s) URL or a local path to a GTFS static zip.
	GtfsURL string
	// RefreshInterval applies to URL sources only. Zero disables refreshing.
	RefreshInterval time.Duration
	Logger          *slog.Logger
}

func (config Config) isLocalFile() bool {
	return !strings.HasPrefix(config.GtfsURL, "http://") && !strings.HasPrefix(config.GtfsURL, "https://")
}

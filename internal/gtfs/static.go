package gtfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/jamespfennell/gtfs"

	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
)

var ErrNoStops = errors.New("gtfs feed contains no stops")

func rawGtfsData(ctx context.Context, source string, isLocalFile bool) ([]byte, error) {
	if isLocalFile {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("error building GTFS request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, logging.FromContext(ctx), "gtfs_download")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading GTFS data: status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	return b, nil
}

// ParseStopDirectory parses a GTFS static zip into a StopDirectory.
func ParseStopDirectory(b []byte) (*StopDirectory, error) {
	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}
	directory := NewStopDirectory(staticData.Stops)
	if directory.Len() == 0 {
		return nil, ErrNoStops
	}
	return directory, nil
}

// loadStopDirectory loads and parses GTFS data from either a URL or a local file
func loadStopDirectory(ctx context.Context, source string, isLocalFile bool) (*StopDirectory, error) {
	b, err := rawGtfsData(ctx, source, isLocalFile)
	if err != nil {
		return nil, err
	}
	return ParseStopDirectory(b)
}

// Package gtfs keeps a directory of transit stops loaded from a GTFS static
// feed, used to check that configured stops reference real stop ids.
package gtfs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
)

// Manager owns the current StopDirectory and refreshes it from URL sources.
type Manager struct {
	source      string
	isLocalFile bool
	config      Config
	logger      *slog.Logger

	mu          sync.RWMutex
	directory   *StopDirectory
	lastUpdated time.Time

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// InitGTFSManager loads the feed once and, for URL sources with a refresh
// interval, keeps reloading it in the background until Shutdown.
func InitGTFSManager(ctx context.Context, config Config) (*Manager, error) {
	manager := &Manager{
		source:       config.GtfsURL,
		isLocalFile:  config.isLocalFile(),
		config:       config,
		logger:       config.Logger,
		shutdownChan: make(chan struct{}),
	}

	start := time.Now()
	directory, err := loadStopDirectory(logging.WithLogger(ctx, manager.logger), manager.source, manager.isLocalFile)
	if err != nil {
		return nil, err
	}
	manager.setDirectory(directory)
	logging.LogOperation(manager.logger, "gtfs_stops_loaded",
		slog.String("source", manager.source),
		slog.Int("stops_count", directory.Len()),
		slog.Duration("duration", time.Since(start)))

	if !manager.isLocalFile && config.RefreshInterval > 0 {
		manager.wg.Add(1)
		go manager.updatePeriodically()
	}

	return manager, nil
}

// NewStaticManager wraps a prebuilt directory without any refreshing.
func NewStaticManager(directory *StopDirectory) *Manager {
	manager := &Manager{shutdownChan: make(chan struct{}), isLocalFile: true}
	manager.setDirectory(directory)
	return manager
}

func (manager *Manager) updatePeriodically() {
	defer manager.wg.Done()

	ticker := time.NewTicker(manager.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			directory, err := loadStopDirectory(logging.WithLogger(ctx, manager.logger), manager.source, false)
			cancel()

			if err != nil {
				logging.LogError(manager.logger, "gtfs refresh failed", err,
					slog.String("source", manager.source),
					slog.String("component", "gtfs_manager"))
				continue
			}
			manager.setDirectory(directory)
			logging.LogOperation(manager.logger, "gtfs_stops_refreshed",
				slog.Int("stops_count", directory.Len()))
		case <-manager.shutdownChan:
			return
		}
	}
}

func (manager *Manager) setDirectory(directory *StopDirectory) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.directory = directory
	manager.lastUpdated = time.Now()
}

// Directory returns the current directory snapshot.
func (manager *Manager) Directory() *StopDirectory {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.directory
}

// Has reports whether stopID is known to the current directory.
func (manager *Manager) Has(stopID string) bool {
	return manager.Directory().Has(stopID)
}

func (manager *Manager) Lookup(stopID string) (StopInfo, bool) {
	return manager.Directory().Lookup(stopID)
}

// Stats describes the loaded feed.
type Stats struct {
	Source      string    `json:"source"`
	LocalFile   bool      `json:"localFile"`
	StopCount   int       `json:"stopCount"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (manager *Manager) Stats() Stats {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return Stats{
		Source:      manager.source,
		LocalFile:   manager.isLocalFile,
		StopCount:   manager.directory.Len(),
		LastUpdated: manager.lastUpdated,
	}
}

// Shutdown gracefully shuts down the manager and its background goroutines
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
	})
}

// Package store owns the live configuration of the service: snapshots,
// applying imports, one level of backup and JSON file persistence.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

var (
	ErrNoBackup        = errors.New("no backup to roll back to")
	ErrInvalidImport   = errors.New("import cannot be applied")
	ErrUnknownStrategy = errors.New("unknown import strategy")
)

// Strategy decides how incoming stops combine with current ones.
type Strategy string

const (
	// StrategyMerge updates stops by id, adds new ones and keeps the rest.
	StrategyMerge Strategy = "merge"
	// StrategyReplace discards current stops.
	StrategyReplace Strategy = "replace"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyMerge:
		return StrategyMerge, nil
	case StrategyReplace:
		return StrategyReplace, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Snapshot is a saved configuration.
type Snapshot struct {
	ID      string           `json:"id"`
	Config  models.AppConfig `json:"config"`
	SavedAt time.Time        `json:"savedAt"`
}

// Stats summarizes the store for diagnostics.
type Stats struct {
	StopCount   int       `json:"stopCount"`
	HasBackup   bool      `json:"hasBackup"`
	BackupID    string    `json:"backupId,omitempty"`
	LastChanged time.Time `json:"lastChanged"`
	Persistent  bool      `json:"persistent"`
}

type Store struct {
	mu          sync.RWMutex
	current     models.AppConfig
	backup      *Snapshot
	lastChanged time.Time

	path   string
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithFile persists every change to path.
func WithFile(path string) Option {
	return func(s *Store) { s.path = path }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an in-memory store holding initial.
func New(initial models.AppConfig, opts ...Option) *Store {
	s := &Store{current: initial.Clone(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.lastChanged = s.now()
	return s
}

// Current returns a copy of the live configuration.
func (s *Store) Current() models.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Backup returns a copy of the snapshot Rollback would restore.
func (s *Store) Backup() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.backup == nil {
		return Snapshot{}, false
	}
	b := *s.backup
	b.Config = b.Config.Clone()
	return b, true
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		StopCount:   len(s.current.Stops),
		HasBackup:   s.backup != nil,
		LastChanged: s.lastChanged,
		Persistent:  s.path != "",
	}
	if s.backup != nil {
		st.BackupID = s.backup.ID
	}
	return st
}

// Apply combines an accepted import with the live configuration. Global
// settings always come from the import. The previous configuration becomes
// the backup.
func (s *Store) Apply(incoming *models.ConfigExport, strategy Strategy) (models.AppConfig, error) {
	if incoming == nil {
		return models.AppConfig{}, fmt.Errorf("%w: no export", ErrInvalidImport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next models.AppConfig
	switch strategy {
	case StrategyMerge, "":
		next = merge(s.current, incoming.Config)
	case StrategyReplace:
		next = incoming.Config.Clone()
		if next.Stops == nil {
			next.Stops = []models.StopConfig{}
		}
	default:
		return models.AppConfig{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	if len(next.Stops) > models.MaxStops {
		return models.AppConfig{}, fmt.Errorf("%w: result would hold %d stops, limit %d",
			ErrInvalidImport, len(next.Stops), models.MaxStops)
	}

	backup := &Snapshot{ID: uuid.NewString(), Config: s.current.Clone(), SavedAt: s.now()}
	if err := s.commit(next, backup); err != nil {
		return models.AppConfig{}, err
	}

	logging.LogOperation(s.logger, "config_applied",
		slog.String("strategy", string(strategy)),
		slog.Int("stops_count", len(next.Stops)),
		slog.String("backup_id", backup.ID))
	return next.Clone(), nil
}

// Rollback restores the backup and clears it.
func (s *Store) Rollback() (models.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backup == nil {
		return models.AppConfig{}, ErrNoBackup
	}
	restored := s.backup.Config.Clone()
	id := s.backup.ID
	if err := s.commit(restored, nil); err != nil {
		return models.AppConfig{}, err
	}

	logging.LogOperation(s.logger, "config_rolled_back", slog.String("backup_id", id))
	return restored.Clone(), nil
}

// commit persists first so memory and file never disagree. Callers hold mu.
func (s *Store) commit(next models.AppConfig, backup *Snapshot) error {
	changed := s.now()
	if s.path != "" {
		if err := writeState(s.path, state{Config: next, Backup: backup, LastChanged: changed}, s.logger); err != nil {
			logging.LogError(s.logger, "failed to persist configuration", err,
				slog.String("path", s.path),
				slog.String("component", "store"))
			return err
		}
	}
	s.current = next
	s.backup = backup
	s.lastChanged = changed
	return nil
}

func merge(current, incoming models.AppConfig) models.AppConfig {
	next := incoming.Clone()

	index := make(map[string]int, len(current.Stops))
	stops := make([]models.StopConfig, len(current.Stops))
	copy(stops, current.Stops)
	for i, stop := range stops {
		index[stop.ID] = i
	}

	for _, stop := range incoming.Stops {
		if i, ok := index[stop.ID]; ok {
			stops[i] = stop
			continue
		}
		index[stop.ID] = len(stops)
		stops = append(stops, stop)
	}

	next.Stops = stops
	return next
}

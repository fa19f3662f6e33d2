package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

// state is the on-disk layout.
type state struct {
	Config      models.AppConfig `json:"config"`
	Backup      *Snapshot        `json:"backup,omitempty"`
	LastChanged time.Time        `json:"lastChanged"`
}

// Open loads the store persisted at path, or starts from the default
// configuration when the file does not exist yet. Later changes are written
// back to path.
func Open(path string, opts ...Option) (*Store, error) {
	opts = append(opts, WithFile(path))

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(models.DefaultAppConfig(), opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}

	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decoding store %s: %w", path, err)
	}
	if st.Config.Stops == nil {
		st.Config.Stops = []models.StopConfig{}
	}

	s := New(st.Config, opts...)
	s.backup = st.Backup
	if !st.LastChanged.IsZero() {
		s.lastChanged = st.LastChanged
	}
	return s, nil
}

// writeState writes to a temporary file in the same directory and renames
// it over path.
func writeState(path string, st state, logger *slog.Logger) (err error) {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err := writeAndSync(tmp, append(b, '\n'), logger); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

func writeAndSync(f *os.File, b []byte, logger *slog.Logger) (err error) {
	defer logging.HandleDeferredError(&err, f.Close, logger, "store_close")

	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	return nil
}

// Save writes the current state to the configured file.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	st := state{Config: s.current, Backup: s.backup, LastChanged: s.lastChanged}
	s.mu.RUnlock()
	return writeState(s.path, st, s.logger)
}

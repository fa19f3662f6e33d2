package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func stop(id, name string, position int) models.StopConfig {
	return models.StopConfig{
		ID: id, Name: name, City: models.CityMunich, StopID: "de:09162:" + id,
		WalkingTimeMinutes: 5, Visible: true, Position: position,
	}
}

func currentConfig() models.AppConfig {
	config := models.DefaultAppConfig()
	config.Stops = []models.StopConfig{stop("a", "Marienplatz", 0), stop("b", "Odeonsplatz", 1)}
	return config
}

func incomingExport(stops ...models.StopConfig) *models.ConfigExport {
	return &models.ConfigExport{
		SchemaVersion: "1.0.0",
		Metadata:      models.ExportMetadata{StopCount: len(stops)},
		Config: models.AppConfig{
			Stops:                  stops,
			DarkMode:               true,
			RefreshIntervalSeconds: 120,
			MaxDeparturesShown:     15,
			Language:               models.LanguageEnglish,
		},
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyMerge, false},
		{"merge", StrategyMerge, false},
		{"replace", StrategyReplace, false},
		{"append", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyMerge(t *testing.T) {
	s := New(currentConfig(), WithClock(fixedNow))

	updated := stop("b", "Odeonsplatz Nord", 4)
	got, err := s.Apply(incomingExport(updated, stop("c", "Sendlinger Tor", 2)), StrategyMerge)
	require.NoError(t, err)

	require.Len(t, got.Stops, 3)
	assert.Equal(t, "Marienplatz", got.Stops[0].Name)
	assert.Equal(t, updated, got.Stops[1])
	assert.Equal(t, "c", got.Stops[2].ID)

	assert.True(t, got.DarkMode)
	assert.Equal(t, float64(120), got.RefreshIntervalSeconds)
	assert.Equal(t, float64(15), got.MaxDeparturesShown)
	assert.Equal(t, models.LanguageEnglish, got.Language)

	assert.Equal(t, got, s.Current())
}

func TestApplyReplace(t *testing.T) {
	s := New(currentConfig())

	got, err := s.Apply(incomingExport(stop("c", "Sendlinger Tor", 0)), StrategyReplace)
	require.NoError(t, err)

	require.Len(t, got.Stops, 1)
	assert.Equal(t, "c", got.Stops[0].ID)
}

func TestApplyReplaceWithNoStops(t *testing.T) {
	s := New(currentConfig())

	got, err := s.Apply(incomingExport(), StrategyReplace)
	require.NoError(t, err)

	assert.NotNil(t, got.Stops)
	assert.Empty(t, got.Stops)
}

func TestApplyRejects(t *testing.T) {
	t.Run("nil export", func(t *testing.T) {
		s := New(currentConfig())
		_, err := s.Apply(nil, StrategyMerge)
		assert.ErrorIs(t, err, ErrInvalidImport)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		s := New(currentConfig())
		_, err := s.Apply(incomingExport(), Strategy("append"))
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("merge exceeds stop limit", func(t *testing.T) {
		s := New(currentConfig())
		stops := make([]models.StopConfig, models.MaxStops)
		for i := range stops {
			stops[i] = stop("n"+string(rune('A'+i)), "Stop", i)
		}

		_, err := s.Apply(incomingExport(stops...), StrategyMerge)

		assert.ErrorIs(t, err, ErrInvalidImport)
		assert.Equal(t, currentConfig(), s.Current())
		_, hasBackup := s.Backup()
		assert.False(t, hasBackup)
	})
}

func TestApplyKeepsBackupAndRollback(t *testing.T) {
	s := New(currentConfig(), WithClock(fixedNow))

	_, err := s.Apply(incomingExport(stop("c", "Sendlinger Tor", 0)), StrategyReplace)
	require.NoError(t, err)

	backup, ok := s.Backup()
	require.True(t, ok)
	assert.Equal(t, currentConfig(), backup.Config)
	assert.Equal(t, fixedNow(), backup.SavedAt)
	_, err = uuid.Parse(backup.ID)
	assert.NoError(t, err)

	restored, err := s.Rollback()
	require.NoError(t, err)
	assert.Equal(t, currentConfig(), restored)
	assert.Equal(t, currentConfig(), s.Current())

	_, err = s.Rollback()
	assert.ErrorIs(t, err, ErrNoBackup)
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := New(currentConfig())

	c := s.Current()
	c.Stops[0].Name = "changed"

	assert.Equal(t, "Marienplatz", s.Current().Stops[0].Name)
}

func TestStats(t *testing.T) {
	s := New(currentConfig(), WithClock(fixedNow))

	st := s.Stats()
	assert.Equal(t, Stats{StopCount: 2, LastChanged: fixedNow()}, st)

	_, err := s.Apply(incomingExport(), StrategyMerge)
	require.NoError(t, err)

	st = s.Stats()
	assert.True(t, st.HasBackup)
	assert.NotEmpty(t, st.BackupID)
}

func TestOpenMissingFileStartsFromDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	s, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, models.DefaultAppConfig(), s.Current())
	assert.True(t, s.Stats().Persistent)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	s, err := Open(path, WithClock(fixedNow))
	require.NoError(t, err)
	applied, err := s.Apply(incomingExport(stop("a", "Marienplatz", 0)), StrategyMerge)
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, applied, reopened.Current())

	backup, ok := reopened.Backup()
	require.True(t, ok)
	assert.Equal(t, models.DefaultAppConfig(), backup.Config)

	_, err = reopened.Rollback()
	require.NoError(t, err)

	again, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAppConfig(), again.Current())
	_, ok = again.Backup()
	assert.False(t, ok)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := New(currentConfig(), WithFile(path), WithClock(fixedNow))

	require.NoError(t, s.Save())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var st state
	require.NoError(t, json.Unmarshal(b, &st))
	assert.Equal(t, currentConfig(), st.Config)
	assert.Nil(t, st.Backup)

	assert.NoError(t, New(currentConfig()).Save())
}

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	s := New(currentConfig(), WithFile(filepath.Join(blocker, "config.json")))

	_, err := s.Apply(incomingExport(), StrategyReplace)

	assert.Error(t, err)
	assert.Equal(t, currentConfig(), s.Current())
	_, ok := s.Backup()
	assert.False(t, ok)
}

package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/validation"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func sampleConfig(n int) models.AppConfig {
	config := models.DefaultAppConfig()
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		config.Stops = append(config.Stops, models.StopConfig{
			ID: "s" + id, Name: "Stop " + id, City: models.CityMunich, StopID: "de:09162:" + id,
			WalkingTimeMinutes: float64(i), Visible: i%2 == 0, Position: i,
		})
	}
	return config
}

func TestBuild(t *testing.T) {
	config := sampleConfig(3)

	e := Build(config, WithClock(fixedNow))

	assert.Equal(t, "1.0.0", e.SchemaVersion)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", e.ExportTimestamp)
	assert.Equal(t, DefaultProducer, e.ExportedBy)
	assert.Equal(t, models.ExportMetadata{StopCount: 3, Language: models.LanguageGerman, Source: DefaultProducer}, e.Metadata)
	assert.Equal(t, models.DefaultExportSettings(), e.ExportSettings)
	assert.Equal(t, config, e.Config)
}

func TestBuildSnapshotsConfig(t *testing.T) {
	config := sampleConfig(1)

	e := Build(config)
	config.Stops[0].Name = "renamed"

	assert.Equal(t, "Stop a", e.Config.Stops[0].Name)
}

func TestBuildOptions(t *testing.T) {
	settings := models.ExportSettings{IncludeStops: true}

	e := Build(models.AppConfig{Language: models.LanguageEnglish},
		WithExportedBy("cli"), WithSource("store.json"), WithSettings(settings))

	assert.Equal(t, "cli", e.ExportedBy)
	assert.Equal(t, "store.json", e.Metadata.Source)
	assert.Equal(t, settings, e.ExportSettings)
	assert.NotNil(t, e.Config.Stops)
	assert.Equal(t, 0, e.Metadata.StopCount)
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		config := sampleConfig(n)
		config.RefreshIntervalSeconds = 45

		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, Build(config)))

		var decoded any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

		result := validation.Validate(decoded)
		assert.True(t, result.IsValid, result.String())
		assert.True(t, result.IsCompatible)

		typed, errs := validation.Decode(decoded)
		require.Empty(t, errs)
		assert.Equal(t, n, typed.Metadata.StopCount)
		assert.NoError(t, ValidateExportData(typed))
		assert.Equal(t, nilIfEmpty(config.Stops), nilIfEmpty(typed.Config.Stops))
	}
}

func nilIfEmpty(stops []models.StopConfig) []models.StopConfig {
	if len(stops) == 0 {
		return nil
	}
	return stops
}

func TestValidateExportData(t *testing.T) {
	e := Build(sampleConfig(1))
	assert.NoError(t, ValidateExportData(e))

	e.Metadata.StopCount = 2
	err := ValidateExportData(e)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistentMetadata))
}

func TestFormatBytes(t *testing.T) {
	testCases := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{10 * 1024, "10 KB"},
		{500 * 1024, "500 KB"},
		{1024 * 1024, "1.0 MB"},
		{25 * 1024 * 1024, "25 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatBytes(tc.n))
		})
	}
}

func TestEstimateSize(t *testing.T) {
	e := Build(sampleConfig(2), WithClock(fixedNow))

	size, err := EstimateSize(e)
	require.NoError(t, err)

	compact, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, len(compact), size.Bytes)
	assert.Equal(t, FormatBytes(len(compact)), size.HumanReadable)
}

func TestEstimateSizeCountsUTF8Bytes(t *testing.T) {
	ascii := sampleConfig(1)
	umlaut := sampleConfig(1)
	umlaut.Stops[0].Name = "Stop ä"

	a, err := EstimateSize(Build(ascii, WithClock(fixedNow)))
	require.NoError(t, err)
	u, err := EstimateSize(Build(umlaut, WithClock(fixedNow)))
	require.NoError(t, err)

	assert.Equal(t, a.Bytes+1, u.Bytes)
}

func TestWriteJSONIsIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Build(sampleConfig(1), WithClock(fixedNow))))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{\n  \"schemaVersion\": \"1.0.0\","))
	assert.Contains(t, out, "\n    \"stops\": [")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "departure-monitor-config-2024-03-01.json", FileName(fixedNow()))
}

package transport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironpinguin/departure-monitor-sub000/internal/export"
	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/validation"
)

type fakeRecorder struct {
	mu          sync.Mutex
	validations []models.ValidationResult
	outcomes    []string
}

func (f *fakeRecorder) RecordValidation(_ context.Context, _ string, result models.ValidationResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validations = append(f.validations, result)
}

func (f *fakeRecorder) RecordImport(_ context.Context, source, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, source+":"+outcome)
}

func sampleConfig() models.AppConfig {
	config := models.DefaultAppConfig()
	config.Stops = []models.StopConfig{
		{ID: "s1", Name: "Hauptbahnhof", City: models.CityWuerzburg, StopID: "WUE1", WalkingTimeMinutes: 5, Visible: true, Position: 0},
		{ID: "s2", Name: "Sanderring", City: models.CityWuerzburg, StopID: "WUE2", WalkingTimeMinutes: 8, Visible: true, Position: 1},
	}
	return config
}

func exportJSON(t *testing.T, config models.AppConfig) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, export.Build(config)))
	return buf.String()
}

func newTestImporter(opts ...ImporterOption) (*Importer, *bytes.Buffer, *fakeRecorder) {
	var logs bytes.Buffer
	rec := &fakeRecorder{}
	opts = append([]ImporterOption{
		WithLogger(logging.NewStructuredLogger(&logs, slog.LevelDebug)),
		WithRecorder(rec),
	}, opts...)
	return NewImporter(opts...), &logs, rec
}

func TestImportFileAccepted(t *testing.T) {
	importer, logs, rec := newTestImporter()
	text := exportJSON(t, sampleConfig())

	current := models.DefaultAppConfig()
	current.Stops = []models.StopConfig{{ID: "s1", Name: "Hbf", City: models.CityWuerzburg, StopID: "WUE1", Position: 4}}

	outcome := importer.ImportFile(context.Background(), File{
		Name: "departure-monitor-config-2024-03-01.json", MIMEType: "application/json",
		Size: int64(len(text)), Body: strings.NewReader(text),
	}, ImportOptions{Current: &current})

	require.True(t, outcome.Accepted(), outcome.Result.String())
	assert.NoError(t, outcome.Err)
	require.NotNil(t, outcome.Export)
	assert.Equal(t, 2, outcome.Export.Metadata.StopCount)
	require.NotNil(t, outcome.Preview)
	assert.Equal(t, models.EstimatedChanges{StopsAdded: 1, StopsUpdated: 1}, outcome.Preview.EstimatedChanges)
	require.Len(t, outcome.Preview.Conflicts, 1)
	assert.Equal(t, "s1", outcome.Preview.Conflicts[0].StopID)

	assert.Equal(t, []string{"file:accepted"}, rec.outcomes)
	assert.Len(t, rec.validations, 1)
	assert.Contains(t, logs.String(), `"msg":"config_validated"`)
	assert.Contains(t, logs.String(), `"msg":"config_import"`)
	assert.Contains(t, logs.String(), `"stops_added":1`)
}

func TestImportFileBoundaryFailures(t *testing.T) {
	importer, logs, rec := newTestImporter(WithLimits(Limits{
		MaxFileSize:       64,
		AllowedExtensions: []string{".json"},
		AllowedMIMETypes:  []string{"application/json"},
	}))

	testCases := []struct {
		name string
		file File
		code models.ErrorCode
	}{
		{name: "extension", file: File{Name: "a.xml", Size: 2, Body: strings.NewReader("{}")}, code: models.ErrorInvalidDataType},
		{name: "declared size", file: File{Name: "a.json", Size: 65, Body: strings.NewReader("{}")}, code: models.ErrorValueOutOfRange},
		{name: "actual size", file: File{Name: "a.json", Size: -1, Body: strings.NewReader(strings.Repeat(" ", 65))}, code: models.ErrorValueOutOfRange},
		{name: "syntax", file: File{Name: "a.json", Size: 1, Body: strings.NewReader("{")}, code: models.ErrorInvalidSchema},
		{name: "nil body", file: File{Name: "a.json", Size: -1}, code: models.ErrorMissingRequiredField},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := importer.ImportFile(context.Background(), tc.file, ImportOptions{})

			assert.False(t, outcome.Accepted())
			assert.Error(t, outcome.Err)
			assert.Nil(t, outcome.Export)
			require.Len(t, outcome.Result.Errors, 1)
			assert.Equal(t, tc.code, outcome.Result.Errors[0].Code)
		})
	}

	assert.Len(t, rec.outcomes, len(testCases))
	assert.Empty(t, rec.validations, "validation never runs on boundary failures")
	assert.Contains(t, logs.String(), `"msg":"config_import_failed"`)
}

func TestImportTextRejected(t *testing.T) {
	importer, _, rec := newTestImporter()

	outcome := importer.ImportText(context.Background(), `{"schemaVersion":"9.9.9"}`, ImportOptions{Source: SourceClipboard})

	assert.False(t, outcome.Accepted())
	assert.NoError(t, outcome.Err)
	assert.True(t, outcome.Result.HasErrorCode(models.ErrorUnsupportedVersion))
	assert.Nil(t, outcome.Preview)
	assert.Equal(t, []string{"clipboard:rejected"}, rec.outcomes)
}

func TestImportTextRejectsInvalidUTF8(t *testing.T) {
	importer, _, rec := newTestImporter()
	text := strings.Replace(exportJSON(t, sampleConfig()), "Hauptbahnhof", "Hauptbahnhof\xff", 1)

	outcome := importer.ImportText(context.Background(), text, ImportOptions{})

	assert.False(t, outcome.Accepted())
	assert.True(t, errors.Is(outcome.Err, ErrInvalidEncoding))
	require.Len(t, outcome.Result.Errors, 1)
	assert.Equal(t, models.ErrorInvalidDataType, outcome.Result.Errors[0].Code)
	assert.Equal(t, models.MessageFileEncoding, outcome.Result.Errors[0].Message)
	assert.Equal(t, []string{"text:failed"}, rec.outcomes)
	assert.Empty(t, rec.validations)
}

func TestImportInconsistentMetadata(t *testing.T) {
	importer, _, _ := newTestImporter()
	text := strings.Replace(exportJSON(t, sampleConfig()), `"stopCount": 2`, `"stopCount": 3`, 1)

	outcome := importer.ImportText(context.Background(), text, ImportOptions{})

	assert.False(t, outcome.Accepted())
	assert.False(t, outcome.Result.IsValid)
	assert.True(t, outcome.Result.HasErrorCode(models.ErrorInvalidSchema))
	assert.Equal(t, "metadata.stopCount", outcome.Result.Errors[0].Field)
}

func TestImportApplyDefaults(t *testing.T) {
	importer, _, _ := newTestImporter()
	text := strings.NewReplacer(`"visible": true,`, ``, `"position": 1`, `"walkingTimeMinutes": 8`).Replace(exportJSON(t, sampleConfig()))

	rejected := importer.ImportText(context.Background(), text, ImportOptions{})
	assert.False(t, rejected.Accepted())

	accepted := importer.ImportText(context.Background(), text, ImportOptions{ApplyDefaults: true})
	require.True(t, accepted.Accepted(), accepted.Result.String())
	assert.True(t, accepted.Export.Config.Stops[0].Visible)
	assert.Equal(t, 1, accepted.Export.Config.Stops[1].Position)
}

type noStops struct{}

func (noStops) Has(string) bool { return false }

func TestImportWithReferenceChecks(t *testing.T) {
	importer, _, _ := newTestImporter(WithValidator(validation.New(validation.WithStopReferences(noStops{}))))
	text := exportJSON(t, sampleConfig())

	outcome := importer.ImportText(context.Background(), text, ImportOptions{})
	assert.Equal(t, 2, outcome.Result.CountErrors(models.ErrorInvalidReference))

	checks := validation.DefaultContext()
	checks.ValidateReferences = false
	outcome = importer.ImportText(context.Background(), text, ImportOptions{Checks: &checks})
	assert.True(t, outcome.Accepted())
}

func TestImportURL(t *testing.T) {
	text := exportJSON(t, sampleConfig())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(text))
	}))
	defer server.Close()

	importer, _, rec := newTestImporter(WithHTTPClient(server.Client()))

	outcome := importer.ImportURL(context.Background(), server.URL+"/export.json", ImportOptions{})
	require.True(t, outcome.Accepted(), outcome.Result.String())

	outcome = importer.ImportURL(context.Background(), "file:///tmp/export.json", ImportOptions{})
	assert.False(t, outcome.Accepted())
	assert.Equal(t, models.ErrorInvalidDataType, outcome.Result.Errors[0].Code)

	assert.Equal(t, []string{"url:accepted", "url:failed"}, rec.outcomes)
}

func TestImportValue(t *testing.T) {
	importer := NewImporter()

	outcome := importer.ImportValue(context.Background(), []any{"not", "an", "export"}, ImportOptions{})

	assert.False(t, outcome.Accepted())
	assert.Equal(t, models.UnknownSchemaVersion, outcome.Result.SchemaVersion)
}

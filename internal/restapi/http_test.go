package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	gtfsparser "github.com/jamespfennell/gtfs"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"github.com/ironpinguin/departure-monitor-sub000/internal/app"
	"github.com/ironpinguin/departure-monitor-sub000/internal/appconf"
	"github.com/ironpinguin/departure-monitor-sub000/internal/export"
	"github.com/ironpinguin/departure-monitor-sub000/internal/gtfs"
	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

const testAPIKey = "TEST"

// createTestApi creates a RestAPI backed by an in-memory store and a small
// static stop directory that imports are checked against.
func createTestApi(t *testing.T, logs *bytes.Buffer) *RestAPI {
	t.Helper()

	cfg := appconf.Default()
	cfg.Env = appconf.EnvFlagToEnvironment("test")
	cfg.ApiKeys = []string{testAPIKey}
	cfg.RateLimit = -1

	if logs == nil {
		logs = &bytes.Buffer{}
	}
	application, err := app.New(context.Background(), cfg, logging.NewStructuredLogger(logs, slog.LevelInfo))
	require.NoError(t, err)
	application.SetGtfsManager(gtfs.NewStaticManager(gtfs.NewStopDirectory([]gtfsparser.Stop{
		{Id: "de:09162:2", Code: "MP", Name: "Marienplatz"},
		{Id: "de:09162:3", Code: "OP", Name: "Odeonsplatz"},
		{Id: "de:09162:50", Code: "ST", Name: "Sendlinger Tor"},
	})))

	api := NewRestAPI(application)
	t.Cleanup(func() {
		api.Close()
		_ = application.Shutdown(context.Background())
	})
	return api
}

func apiHandler(api *RestAPI) http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	return api.Handler(router)
}

func serve(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, body io.Reader) models.ResponseModel {
	t.Helper()
	var response models.ResponseModel
	require.NoError(t, json.NewDecoder(body).Decode(&response))
	return response
}

// entryOf re-decodes data.entry into out.
func entryOf(t *testing.T, response models.ResponseModel, out any) {
	t.Helper()
	data, ok := response.Data.(map[string]any)
	require.True(t, ok, "data is %T", response.Data)
	b, err := json.Marshal(data["entry"])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
}

func sampleStops() []models.StopConfig {
	return []models.StopConfig{
		{ID: "s1", Name: "Marienplatz", City: models.CityMunich, StopID: "de:09162:2", WalkingTimeMinutes: 5, Visible: true, Position: 0},
		{ID: "s2", Name: "Sendlinger Tor", City: models.CityMunich, StopID: "de:09162:50", WalkingTimeMinutes: 8, Visible: true, Position: 1},
	}
}

func exportPayload(t *testing.T, stops ...models.StopConfig) []byte {
	t.Helper()
	config := models.DefaultAppConfig()
	config.Stops = stops
	config.Language = models.LanguageEnglish
	b, err := json.Marshal(export.Build(config))
	require.NoError(t, err)
	return b
}

func jsonRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

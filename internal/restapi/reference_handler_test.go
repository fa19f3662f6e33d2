package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironpinguin/departure-monitor-sub000/internal/gtfs"
)

func TestStopReferenceHandler(t *testing.T) {
	api := createTestApi(t, nil)
	handler := apiHandler(api)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"by stop id", "/api/reference/stops/de:09162:2", http.StatusOK},
		{"with json suffix", "/api/reference/stops/de:09162:2.json", http.StatusOK},
		{"by stop code", "/api/reference/stops/MP", http.StatusOK},
		{"unknown", "/api/reference/stops/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, handler, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}
			var stop gtfs.StopInfo
			entryOf(t, decodeResponse(t, rec.Body), &stop)
			assert.Equal(t, "de:09162:2", stop.ID)
			assert.Equal(t, "Marienplatz", stop.Name)
		})
	}
}

func TestStopReferenceHandlerWithoutFeed(t *testing.T) {
	api := createTestApi(t, nil)
	api.GtfsManager = nil

	rec := serve(t, apiHandler(api), httptest.NewRequest(http.MethodGet, "/api/reference/stops/x", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

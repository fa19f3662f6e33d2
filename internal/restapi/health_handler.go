package restapi

import (
	"net/http"

	"github.com/ironpinguin/departure-monitor-sub000/internal/app"
	"github.com/ironpinguin/departure-monitor-sub000/internal/gtfs"
	"github.com/ironpinguin/departure-monitor-sub000/internal/store"
)

type healthEntry struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Env     string      `json:"env"`
	Store   store.Stats `json:"store"`
	Gtfs    *gtfs.Stats `json:"gtfs,omitempty"`
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	entry := healthEntry{
		Status:  "ok",
		Version: app.Version,
		Env:     api.Config.Env.String(),
		Store:   api.Store.Stats(),
	}
	if api.GtfsManager != nil {
		stats := api.GtfsManager.Stats()
		entry.Gtfs = &stats
	}
	api.sendEntry(w, r, entry)
}

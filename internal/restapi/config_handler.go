package restapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/ironpinguin/departure-monitor-sub000/internal/export"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/store"
	"github.com/ironpinguin/departure-monitor-sub000/internal/utils"
)

// exportSource is recorded in metadata.source of API exports.
const exportSource = "api"

func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	api.sendEntry(w, r, api.Store.Current())
}

func (api *RestAPI) buildExport(r *http.Request) models.ConfigExport {
	settings := models.ExportSettings{
		IncludeStops:    utils.QueryBool(r, "includeStops", true),
		IncludeSettings: utils.QueryBool(r, "includeSettings", true),
		IncludeMetadata: utils.QueryBool(r, "includeMetadata", true),
	}
	return export.Build(api.Store.Current(),
		export.WithSettings(settings),
		export.WithSource(exportSource))
}

func (api *RestAPI) exportHandler(w http.ResponseWriter, r *http.Request) {
	e := api.buildExport(r)

	size, err := export.EstimateSize(e)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.Metrics.RecordExport(r.Context(), size.Bytes)

	setJSONResponseType(w)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(time.Now())+`"`)
	if err := export.WriteJSON(w, e); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}

func (api *RestAPI) exportSizeHandler(w http.ResponseWriter, r *http.Request) {
	size, err := export.EstimateSize(api.buildExport(r))
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendEntry(w, r, size)
}

func (api *RestAPI) rollbackHandler(w http.ResponseWriter, r *http.Request) {
	restored, err := api.Store.Rollback()
	if errors.Is(err, store.ErrNoBackup) {
		api.sendError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendEntry(w, r, restored)
}

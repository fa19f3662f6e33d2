package restapi

import (
	"net/http"

	"github.com/ironpinguin/departure-monitor-sub000/internal/utils"
)

func (api *RestAPI) stopReferenceHandler(w http.ResponseWriter, r *http.Request) {
	if api.GtfsManager == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, errNoReferenceData.Error(), nil)
		return
	}

	stop, ok := api.GtfsManager.Lookup(utils.ExtractIDFromParams(r, "id"))
	if !ok {
		api.sendNotFound(w, r)
		return
	}
	api.sendEntry(w, r, stop)
}

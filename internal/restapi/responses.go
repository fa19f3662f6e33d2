package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(w)
	if response.Code != http.StatusOK {
		w.WriteHeader(response.Code)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode response", err,
			slog.String("component", "http_server"))
	}
}

func (api *RestAPI) sendEntry(w http.ResponseWriter, r *http.Request, entry any) {
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) sendError(w http.ResponseWriter, r *http.Request, code int, text string, data any) {
	api.sendResponse(w, r, models.NewResponse(code, data, text))
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusNotFound, "resource not found", nil)
}

func (api *RestAPI) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
}

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

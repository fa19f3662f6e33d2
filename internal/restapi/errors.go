package restapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
)

var errNoReferenceData = errors.New("no stop reference data loaded")

// invalidAPIKeyResponse sends a 401 Unauthorized response with the required format
// for invalid API key errors
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	response := models.NewResponse(http.StatusUnauthorized, nil, "permission denied")
	response.Version = 1
	api.sendResponse(w, r, response)
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("component", "http_server"))
	api.sendError(w, r, http.StatusInternalServerError, "internal server error", nil)
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.sendError(w, r, http.StatusBadRequest, err.Error(), nil)
}

// rejectedResponse reports an import payload that failed validation. The
// result carries message keys; Text is rendered in the requested language.
func (api *RestAPI) rejectedResponse(w http.ResponseWriter, r *http.Request, result models.ValidationResult, entry any) {
	text := "validation failed"
	if len(result.Errors) > 0 {
		text = api.localize(r, result.Errors[0])
	}
	api.sendError(w, r, http.StatusUnprocessableEntity, text, map[string]any{"entry": entry})
}

func (api *RestAPI) canceledResponse(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, r, http.StatusServiceUnavailable, "import canceled", nil)
}

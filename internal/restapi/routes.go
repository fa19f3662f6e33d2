package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func validateAPIKey(api *RestAPI, finalHandler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)

	router.HandlerFunc(http.MethodGet, "/api/config", api.configHandler)
	router.HandlerFunc(http.MethodGet, "/api/config/export", api.exportHandler)
	router.HandlerFunc(http.MethodGet, "/api/config/export/size", api.exportSizeHandler)
	router.HandlerFunc(http.MethodPost, "/api/config/validate", api.validateHandler)
	router.HandlerFunc(http.MethodPost, "/api/config/preview", api.previewHandler)
	router.Handler(http.MethodPost, "/api/config/import", validateAPIKey(api, api.importHandler))
	router.Handler(http.MethodPost, "/api/config/rollback", validateAPIKey(api, api.rollbackHandler))

	router.HandlerFunc(http.MethodGet, "/api/reference/stops/:id", api.stopReferenceHandler)

	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
}

// Package webui serves a debug page that dumps the live service state.
package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ironpinguin/departure-monitor-sub000/internal/app"
)

type WebUI struct {
	*app.Application
}

func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
}

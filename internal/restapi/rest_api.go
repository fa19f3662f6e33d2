// Package restapi exposes configuration import, export and rollback over
// HTTP.
package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/ironpinguin/departure-monitor-sub000/internal/app"
)

// importBudget bounds one import request, including URL fetches.
const importBudget = 30 * time.Second

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}

// Handler wraps router in the middleware chain, outermost first: request
// id, request logging, security headers, compression, rate limiting and the
// body size limit.
func (api *RestAPI) Handler(router *httprouter.Router) http.Handler {
	var h http.Handler = router
	h = NewMaxBodyMiddleware(api.Config.MaxBodySize)(h)
	if api.rateLimiter != nil {
		h = api.rateLimiter.Handler(h)
	}
	h = CompressionMiddleware(h)
	h = securityHeaders(h)
	h = NewRequestLoggingMiddleware(api.Logger)(h)
	return RequestIDMiddleware(h)
}

// Close stops background work owned by the API.
func (api *RestAPI) Close() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

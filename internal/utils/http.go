package utils

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// ExtractIDFromParams returns the named route parameter with a trailing
// ".json" removed, so "/stops/WUE1.json" and "/stops/WUE1" resolve alike.
func ExtractIDFromParams(r *http.Request, paramName string) string {
	params := httprouter.ParamsFromContext(r.Context())
	return strings.TrimSuffix(params.ByName(paramName), ".json")
}

// QueryBool parses a boolean query parameter, falling back to def when the
// parameter is absent or unparsable.
func QueryBool(r *http.Request, name string, def bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

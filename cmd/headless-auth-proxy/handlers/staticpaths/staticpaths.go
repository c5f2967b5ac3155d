// Package staticpaths serves the build-time static paths contract
package staticpaths

import (
	"net/http"

	"github.com/wrale/headless-auth-proxy/cmd/headless-auth-proxy/handlers/common"
	"github.com/wrale/headless-auth-proxy/internal/staticpaths"
)

// Handler returns the static paths, applying overrides from the query string
type Handler struct{}

// New creates a new static paths handler
func New() *Handler {
	return &Handler{}
}

// ServeHTTP handles static paths requests. Supported query parameters are
// fallback (blocking, true or false) and repeated path values.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var override *staticpaths.Override
	if paths, ok := query["path"]; ok {
		override = &staticpaths.Override{Paths: paths}
	}

	if raw := query.Get("fallback"); raw != "" {
		fallback, err := staticpaths.ParseFallback(raw)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, common.ErrorCodeInvalidRequest, err.Error())
			return
		}
		if override == nil {
			override = &staticpaths.Override{}
		}
		override.Fallback = &fallback
	}

	common.WriteJSON(w, http.StatusOK, staticpaths.Initialize(override))
}

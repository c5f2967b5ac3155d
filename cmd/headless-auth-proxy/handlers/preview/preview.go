// Package preview exposes preview mode state and exit endpoints
package preview

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wrale/headless-auth-proxy/cmd/headless-auth-proxy/handlers/common"
	"github.com/wrale/headless-auth-proxy/internal/preview"
)

// Clearer disables preview mode on a response
type Clearer interface {
	ClearPreviewData(w http.ResponseWriter)
}

// Handler serves preview status and exit requests
type Handler struct {
	preview Clearer
	logger  *zap.SugaredLogger
}

// StatusResponse reports whether preview mode is active for the request
type StatusResponse struct {
	Enabled bool            `json:"enabled"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// New creates a new preview handler
func New(clearer Clearer, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{preview: clearer, logger: logger}
}

// HandleStatus reports the preview state recorded by preview.Middleware
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	data, ok := preview.FromContext(r.Context())
	common.WriteJSON(w, http.StatusOK, StatusResponse{
		Enabled: ok,
		Data:    data,
	})
}

// HandleExit disables preview mode and redirects to redirect_uri, or the root
func (h *Handler) HandleExit(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("redirect_uri")
	if location == "" {
		location = "/"
	}

	h.logger.Debugw("Clearing preview data", "redirect_uri", location)
	h.preview.ClearPreviewData(w)

	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusFound)
}

package health

import (
	"context"
	"net/http"

	"github.com/wrale/headless-auth-proxy/cmd/headless-auth-proxy/handlers/common"
	"github.com/wrale/headless-auth-proxy/internal/platform"
)

// Checker reports whether a dependency is operational
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// Handler processes health check requests
type Handler struct {
	tokens  Checker
	version string
}

// Response represents the health check response.
// Version is omitted when empty.
type Response struct {
	Status  string         `json:"status"`
	Version string         `json:"version,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// New creates a new health check handler for the token store
func New(tokens Checker) *Handler {
	return &Handler{
		tokens:  tokens,
		version: "unknown",
	}
}

// WithVersion sets the version for health check responses
func (h *Handler) WithVersion(version string) *Handler {
	h.version = version
	return h
}

// ServeHTTP handles health check requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := Response{
		Status:  "healthy",
		Version: h.version,
		Details: map[string]any{
			"runtime": map[string]any{
				"server_side": platform.IsServerSide(),
			},
		},
	}

	if err := h.tokens.CheckHealth(r.Context()); err != nil {
		response.Status = "unhealthy"
		response.Details["token_store"] = map[string]any{
			"status":  "unhealthy",
			"message": err.Error(),
		}
	} else {
		response.Details["token_store"] = map[string]any{
			"status": "healthy",
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	common.WriteJSON(w, status, response)
}

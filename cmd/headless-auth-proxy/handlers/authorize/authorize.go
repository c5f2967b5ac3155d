// Package authorize handles the authorization code flow that enables preview mode
package authorize

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/wrale/headless-auth-proxy/internal/auth"
	"github.com/wrale/headless-auth-proxy/internal/token"
)

// PreviewStore toggles preview mode on a response
type PreviewStore interface {
	SetPreviewData(w http.ResponseWriter, payload any) error
	ClearPreviewData(w http.ResponseWriter)
}

// StateGuard binds the provider round trip to the browser that started it
type StateGuard interface {
	Issue(w http.ResponseWriter) (string, error)
	Verify(w http.ResponseWriter, r *http.Request, state string) error
}

// Handler initiates authorization or exchanges an authorization code for an
// access token, stores the token and enables preview mode
type Handler struct {
	auth    auth.Authorizer
	tokens  token.Store
	preview PreviewStore
	state   StateGuard
	logger  *zap.SugaredLogger
}

// Config contains handler configuration
type Config struct {
	Authorizer auth.Authorizer
	Tokens     token.Store
	Preview    PreviewStore

	// State is optional. When set the provider URL carries a state that the
	// exchange must return.
	State StateGuard

	Logger *zap.SugaredLogger
}

// New creates a new authorization handler
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Handler{
		auth:    cfg.Authorizer,
		tokens:  cfg.Tokens,
		preview: cfg.Preview,
		state:   cfg.State,
		logger:  logger,
	}
}

// ServeHTTP dispatches on the query shape:
//   - redirect_uri with a provider error fails
//   - redirect_uri without code initiates authorization
//   - code with redirect_uri exchanges the code
//   - anything else is unauthorized
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	redirectURI := query.Get("redirect_uri")

	// A denied authorization comes back without a code and must not start over
	if code == "" && redirectURI != "" && query.Has("error") {
		h.fail(r.Context(), w, fmt.Errorf("provider returned %q", query.Get("error")))
		return
	}

	if code == "" && redirectURI != "" {
		h.initiate(w, r, redirectURI)
		return
	}

	if code == "" || redirectURI == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.exchange(w, r, code, redirectURI); err != nil {
		h.fail(r.Context(), w, err)
		return
	}

	// redirect_uri is relative to the front end and sent as-is
	redirect(w, redirectURI, http.StatusFound)
}

// initiate sends the user agent to the provider, or straight back to the
// front end when the session is already authorized
func (h *Handler) initiate(w http.ResponseWriter, r *http.Request, redirectURI string) {
	target := absoluteURL(r.Host, redirectURI)

	result, err := h.auth.EnsureAuthorization(r.Context(), r, target)
	if err != nil {
		h.fail(r.Context(), w, fmt.Errorf("ensuring authorization: %w", err))
		return
	}

	switch result := result.(type) {
	case auth.NeedsRedirect:
		location, err := h.withState(w, result.URL)
		if err != nil {
			h.fail(r.Context(), w, err)
			return
		}
		redirect(w, location, http.StatusTemporaryRedirect)
	case auth.AlreadyAuthorized:
		redirect(w, target, http.StatusFound)
	default:
		h.fail(r.Context(), w, fmt.Errorf("unexpected authorization result %T", result))
	}
}

// withState adds a freshly issued state to the provider URL
func (h *Handler) withState(w http.ResponseWriter, providerURL string) (string, error) {
	if h.state == nil {
		return providerURL, nil
	}

	u, err := url.Parse(providerURL)
	if err != nil {
		return "", fmt.Errorf("parsing provider URL: %w", err)
	}
	state, err := h.state.Issue(w)
	if err != nil {
		return "", fmt.Errorf("issuing state: %w", err)
	}

	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (h *Handler) exchange(w http.ResponseWriter, r *http.Request, code, redirectURI string) error {
	ctx := r.Context()

	if h.state != nil {
		if err := h.state.Verify(w, r, r.URL.Query().Get("state")); err != nil {
			return fmt.Errorf("verifying state: %w", err)
		}
	}

	tok, err := h.auth.Authorize(ctx, code, absoluteURL(r.Host, redirectURI))
	if err != nil {
		return err
	}
	if tok == nil {
		return auth.ErrEmptyAccessToken
	}

	if err := h.tokens.StoreAccessToken(ctx, w, tok.AccessToken); err != nil {
		return fmt.Errorf("storing access token: %w", err)
	}

	h.logger.Debugw("Setting preview data", "redirect_uri", redirectURI)
	if err := h.preview.SetPreviewData(w, struct{}{}); err != nil {
		return fmt.Errorf("setting preview data: %w", err)
	}

	return nil
}

// fail clears preview mode, withdraws a token queued by this request and ends
// it with an empty 500
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	h.logger.Debugw("Clearing preview data", "error", err)
	if err := h.tokens.DiscardAccessToken(ctx, w); err != nil {
		h.logger.Warnw("Discarding access token", "error", err)
	}
	h.preview.ClearPreviewData(w)

	w.WriteHeader(http.StatusInternalServerError)
}

// absoluteURL rebuilds the front end URL for redirectURI on host. Local
// development hosts are served over plain http.
func absoluteURL(host, redirectURI string) string {
	protocol := "https:"
	if strings.Contains(host, "localhost") {
		protocol = "http:"
	}

	return protocol + "//" + host + "/" + strings.TrimPrefix(redirectURI, "/")
}

// redirect writes the Location header without resolving it against the request
func redirect(w http.ResponseWriter, location string, status int) {
	w.Header().Set("Location", location)
	w.WriteHeader(status)
}

package token

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/wrale/headless-auth-proxy/internal/validation"
)

// CookieStore keeps the base64 encoded token in the cookie itself
type CookieStore struct {
	opts CookieOptions
}

// NewCookieStore creates a cookie-only token store
func NewCookieStore(opts CookieOptions) *CookieStore {
	return &CookieStore{opts: opts.withDefaults()}
}

// StoreAccessToken writes the encoded token cookie
func (s *CookieStore) StoreAccessToken(ctx context.Context, w http.ResponseWriter, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	http.SetCookie(w, s.opts.cookie(base64.StdEncoding.EncodeToString([]byte(token))))
	return nil
}

// AccessToken decodes the token cookie. Values that are not base64 are
// treated as absent.
func (s *CookieStore) AccessToken(ctx context.Context, r *http.Request) (string, error) {
	value, ok := readCookie(r, s.opts.Name)
	if !ok || !validation.IsBase64(value) {
		return "", ErrNoToken
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(decoded) == 0 {
		return "", ErrNoToken
	}

	return string(decoded), nil
}

// DiscardAccessToken drops the queued token cookie
func (s *CookieStore) DiscardAccessToken(ctx context.Context, w http.ResponseWriter) error {
	dropQueued(w, s.opts.Name)
	return nil
}

// CheckHealth always succeeds, the cookie store has no backend
func (s *CookieStore) CheckHealth(ctx context.Context) error {
	return nil
}

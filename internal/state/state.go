// Package state binds an authorization request to the browser that started it.
//
// Issue sets a short-lived cookie holding a signed random value and returns
// the same value for the provider's state parameter. Verify accepts the
// callback only when the returned state matches that cookie.
package state

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultCookieName holds the pending authorization state
	DefaultCookieName = "headless-auth-state"

	// DefaultTTL bounds how long a user may take at the provider
	DefaultTTL = 10 * time.Minute
)

var (
	// ErrInvalidState indicates a missing or mismatched state
	ErrInvalidState = errors.New("invalid authorization state")

	// ErrMissingSecret indicates the manager has no signing secret
	ErrMissingSecret = errors.New("state signing secret is required")
)

// Config contains state manager configuration
type Config struct {
	Secret     []byte
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager issues and verifies authorization state
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewManager creates a new state manager
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}

	m := &Manager{
		secret:     cfg.Secret,
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
	}
	if m.cookieName == "" {
		m.cookieName = DefaultCookieName
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	return m, nil
}

// Issue creates a new state and queues its cookie on the response
func (m *Manager) Issue(w http.ResponseWriter) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(nonce)
	state := encoded + "." + base64.RawURLEncoding.EncodeToString(m.sign(encoded))

	http.SetCookie(w, m.cookie(state, int(m.ttl.Seconds())))
	return state, nil
}

// Verify checks state against the cookie set by Issue. The cookie is expired
// either way so a state is accepted at most once.
func (m *Manager) Verify(w http.ResponseWriter, r *http.Request, state string) error {
	http.SetCookie(w, m.cookie("", -1))

	if state == "" {
		return ErrInvalidState
	}

	c, err := r.Cookie(m.cookieName)
	if err != nil || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		return ErrInvalidState
	}

	nonce, sig, ok := strings.Cut(state, ".")
	if !ok {
		return ErrInvalidState
	}
	actual, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(m.sign(nonce), actual) {
		return ErrInvalidState
	}

	return nil
}

func (m *Manager) sign(nonce string) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(nonce))
	return h.Sum(nil)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Package preview toggles preview mode for a browser session.
//
// Preview mode is carried by two cookies: a bypass cookie holding the
// configured bypass id and a data cookie holding a signed JWT with the preview
// payload. Both must be present and valid for preview mode to be active.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// BypassCookie holds the preview bypass id
	BypassCookie = "__prerender_bypass"

	// DataCookie holds the signed preview payload
	DataCookie = "__next_preview_data"

	// DefaultMaxAge bounds the lifetime of preview cookies when unset
	DefaultMaxAge = time.Hour

	claimsType = "preview-data"
)

var (
	// ErrMissingSecret indicates the manager has no signing secret
	ErrMissingSecret = errors.New("preview signing secret is required")

	// ErrMissingBypassID indicates the manager has no bypass id
	ErrMissingBypassID = errors.New("preview bypass id is required")
)

// Data is the decoded preview payload
type Data = json.RawMessage

// Claims are the JWT claims of the data cookie
type Claims struct {
	Data json.RawMessage `json:"data"`
	Type string          `json:"type"`
	jwt.RegisteredClaims
}

// Config configures a preview Manager
type Config struct {
	Secret   []byte
	BypassID string
	MaxAge   time.Duration
	Secure   bool
}

// Manager sets, clears and reads preview mode cookies
type Manager struct {
	secret   []byte
	bypassID string
	maxAge   time.Duration
	secure   bool
	now      func() time.Time
}

// NewManager creates a preview manager
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.BypassID == "" {
		return nil, ErrMissingBypassID
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}

	return &Manager{
		secret:   cfg.Secret,
		bypassID: cfg.BypassID,
		maxAge:   cfg.MaxAge,
		secure:   cfg.Secure,
		now:      time.Now,
	}, nil
}

// SetPreviewData enables preview mode on the response with the given payload
func (m *Manager) SetPreviewData(w http.ResponseWriter, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding preview payload: %w", err)
	}

	now := m.now()
	claims := Claims{
		Data: data,
		Type: claimsType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("signing preview data: %w", err)
	}

	http.SetCookie(w, m.cookie(BypassCookie, m.bypassID, int(m.maxAge.Seconds())))
	http.SetCookie(w, m.cookie(DataCookie, signed, int(m.maxAge.Seconds())))
	return nil
}

// ClearPreviewData disables preview mode. Preview cookies already queued on the
// response are dropped first, so clearing after a partial set never leaves
// preview mode enabled.
func (m *Manager) ClearPreviewData(w http.ResponseWriter) {
	header := w.Header()
	if queued := header.Values("Set-Cookie"); len(queued) > 0 {
		kept := make([]string, 0, len(queued))
		for _, line := range queued {
			if !isPreviewCookie(line) {
				kept = append(kept, line)
			}
		}
		header.Del("Set-Cookie")
		for _, line := range kept {
			header.Add("Set-Cookie", line)
		}
	}

	http.SetCookie(w, m.cookie(BypassCookie, "", -1))
	http.SetCookie(w, m.cookie(DataCookie, "", -1))
}

// PreviewData returns the payload when the request is in preview mode
func (m *Manager) PreviewData(r *http.Request) (Data, bool) {
	bypass, err := r.Cookie(BypassCookie)
	if err != nil || bypass.Value != m.bypassID {
		return nil, false
	}

	dataCookie, err := r.Cookie(DataCookie)
	if err != nil || dataCookie.Value == "" {
		return nil, false
	}

	claims, err := m.parse(dataCookie.Value)
	if err != nil {
		return nil, false
	}

	return claims.Data, true
}

func (m *Manager) parse(signed string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(signed, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("invalid preview data: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid preview data claims")
	}
	if claims.Type != claimsType {
		return nil, fmt.Errorf("invalid preview data type %q", claims.Type)
	}

	return claims, nil
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func isPreviewCookie(line string) bool {
	return strings.HasPrefix(line, BypassCookie+"=") || strings.HasPrefix(line, DataCookie+"=")
}

type contextKey struct{}

// Middleware records the preview state of each request in its context
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if data, ok := m.PreviewData(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), contextKey{}, data))
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the preview payload recorded by Middleware
func FromContext(ctx context.Context) (Data, bool) {
	data, ok := ctx.Value(contextKey{}).(Data)
	return data, ok
}

// Package token persists access tokens for the browser session that requested them
package token

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNoToken indicates the request carries no readable access token
	ErrNoToken = errors.New("no access token")

	// ErrEmptyToken indicates an attempt to store an empty access token
	ErrEmptyToken = errors.New("empty access token")
)

// DefaultCookieName is the cookie holding the token or its session reference
const DefaultCookieName = "headless-at"

// Store persists an access token scoped to a response and reads it back
// from later requests
type Store interface {
	// StoreAccessToken writes the token cookie on the response
	StoreAccessToken(ctx context.Context, w http.ResponseWriter, token string) error

	// AccessToken returns the token for the request or ErrNoToken
	AccessToken(ctx context.Context, r *http.Request) (string, error)

	// DiscardAccessToken withdraws a token cookie queued on the response but
	// not yet sent
	DiscardAccessToken(ctx context.Context, w http.ResponseWriter) error

	// CheckHealth verifies the store is operational
	CheckHealth(ctx context.Context) error
}

// CookieOptions controls the token cookie attributes
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.TTL <= 0 {
		o.TTL = 24 * time.Hour
	}
	return o
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(o.TTL.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func readCookie(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// dropQueued removes Set-Cookie lines for name from the response headers and
// returns the values they carried
func dropQueued(w http.ResponseWriter, name string) []string {
	header := w.Header()
	queued := header.Values("Set-Cookie")
	if len(queued) == 0 {
		return nil
	}

	var (
		kept    []string
		dropped []string
	)
	prefix := name + "="
	for _, line := range queued {
		if !strings.HasPrefix(line, prefix) {
			kept = append(kept, line)
			continue
		}
		value, _, _ := strings.Cut(strings.TrimPrefix(line, prefix), ";")
		dropped = append(dropped, value)
	}

	header.Del("Set-Cookie")
	for _, line := range kept {
		header.Add("Set-Cookie", line)
	}
	return dropped
}

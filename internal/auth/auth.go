// Package auth exchanges authorization codes and decides whether a browser
// session still needs to visit the identity provider
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/wrale/headless-auth-proxy/internal/token"
)

var (
	// ErrEmptyAccessToken indicates the provider answered without an access token
	ErrEmptyAccessToken = errors.New("token response has no access token")

	// ErrMissingCode indicates an exchange was attempted without a code
	ErrMissingCode = errors.New("authorization code is required")

	// ErrRelativeRedirect indicates a redirect URL without scheme or host
	ErrRelativeRedirect = errors.New("redirect URL must be absolute")
)

// DefaultCallbackPath is where the provider returns with the authorization code
const DefaultCallbackPath = "/api/auth"

// Authorization is the outcome of EnsureAuthorization. It is either
// NeedsRedirect or AlreadyAuthorized.
type Authorization interface {
	isAuthorization()
}

// NeedsRedirect means the user agent must visit URL to grant authorization
type NeedsRedirect struct {
	URL string
}

// AlreadyAuthorized means the session already holds an access token
type AlreadyAuthorized struct {
	Token string
}

func (NeedsRedirect) isAuthorization()     {}
func (AlreadyAuthorized) isAuthorization() {}

// Authorizer is the capability the authorization handler depends on
type Authorizer interface {
	// EnsureAuthorization reports whether the request is already authorized and
	// otherwise where to send the user agent. redirectURL is the absolute front
	// end URL the user agent ends up on once authorized.
	EnsureAuthorization(ctx context.Context, r *http.Request, redirectURL string) (Authorization, error)

	// Authorize exchanges an authorization code for an access token. redirectURL
	// must be the one the authorization was started with.
	Authorize(ctx context.Context, code, redirectURL string) (*oauth2.Token, error)
}

// Client implements Authorizer against an OAuth2 provider
type Client struct {
	oauth        *oauth2.Config
	tokens       token.Store
	callbackPath string
}

// Config contains client configuration
type Config struct {
	OAuth  *oauth2.Config
	Tokens token.Store

	// CallbackPath is the path serving the authorization handler. Defaults to
	// DefaultCallbackPath.
	CallbackPath string
}

// NewClient creates a new authorization client
func NewClient(cfg Config) *Client {
	callbackPath := cfg.CallbackPath
	if callbackPath == "" {
		callbackPath = DefaultCallbackPath
	}

	return &Client{
		oauth:        cfg.OAuth,
		tokens:       cfg.Tokens,
		callbackPath: callbackPath,
	}
}

// EnsureAuthorization implements Authorizer
func (c *Client) EnsureAuthorization(ctx context.Context, r *http.Request, redirectURL string) (Authorization, error) {
	accessToken, err := c.tokens.AccessToken(ctx, r)
	switch {
	case err == nil:
		return AlreadyAuthorized{Token: accessToken}, nil
	case errors.Is(err, token.ErrNoToken):
		callback, err := c.CallbackURL(redirectURL)
		if err != nil {
			return nil, err
		}
		return NeedsRedirect{URL: c.oauth.AuthCodeURL("", oauth2.SetAuthURLParam("redirect_uri", callback))}, nil
	default:
		return nil, fmt.Errorf("reading access token: %w", err)
	}
}

// Authorize implements Authorizer
func (c *Client) Authorize(ctx context.Context, code, redirectURL string) (*oauth2.Token, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	callback, err := c.CallbackURL(redirectURL)
	if err != nil {
		return nil, err
	}

	tok, err := c.oauth.Exchange(ctx, code, oauth2.SetAuthURLParam("redirect_uri", callback))
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}

	return tok, nil
}

// CallbackURL returns the redirect_uri registered with the provider for
// redirectURL: the callback path on the same origin, carrying the front end
// path and query in its own redirect_uri parameter.
func (c *Client) CallbackURL(redirectURL string) (string, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", fmt.Errorf("parsing redirect URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrRelativeRedirect, redirectURL)
	}

	relative := u.EscapedPath()
	if relative == "" {
		relative = "/"
	}
	if u.RawQuery != "" {
		relative += "?" + u.RawQuery
	}

	callback := url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     c.callbackPath,
		RawQuery: url.Values{"redirect_uri": {relative}}.Encode(),
	}
	return callback.String(), nil
}

package main

import (
	"errors"
	"fmt"
	"time"
)

// Token store backends
const (
	TokenStoreCookie = "cookie"
	TokenStoreRedis  = "redis"
)

// Config holds server configuration loaded from environment variables
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	OAuth OAuthConfig `envconfig:"OAUTH"`

	TokenStore      string        `envconfig:"TOKEN_STORE" default:"cookie"`
	RedisURL        string        `envconfig:"REDIS_URL"`
	TokenCookieName string        `envconfig:"TOKEN_COOKIE_NAME" default:"headless-at"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	CookieSecure    bool          `envconfig:"COOKIE_SECURE" default:"true"`

	PreviewSecret   string        `envconfig:"PREVIEW_SECRET" required:"true"`
	PreviewBypassID string        `envconfig:"PREVIEW_BYPASS_ID" required:"true"`
	PreviewMaxAge   time.Duration `envconfig:"PREVIEW_MAX_AGE" default:"1h"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
}

// OAuthConfig holds the identity provider settings
type OAuthConfig struct {
	ClientID              string   `envconfig:"CLIENT_ID" required:"true"`
	ClientSecret          string   `envconfig:"CLIENT_SECRET"`
	AuthorizationEndpoint string   `envconfig:"AUTHORIZATION_ENDPOINT" required:"true"`
	TokenEndpoint         string   `envconfig:"TOKEN_ENDPOINT" required:"true"`
	Scopes                []string `envconfig:"SCOPES"`
	RequireState          bool     `envconfig:"REQUIRE_STATE" default:"true"`
}

// Validate checks rules spanning several settings
func (c Config) Validate() error {
	switch c.TokenStore {
	case TokenStoreCookie:
	case TokenStoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when TOKEN_STORE is redis")
		}
	default:
		return fmt.Errorf("unsupported TOKEN_STORE %q", c.TokenStore)
	}

	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.PreviewMaxAge <= 0 {
		return errors.New("PREVIEW_MAX_AGE must be positive")
	}

	return nil
}

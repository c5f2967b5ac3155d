package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/wrale/headless-auth-proxy/cmd/headless-auth-proxy/handlers/authorize"
	"github.com/wrale/headless-auth-proxy/cmd/headless-auth-proxy/handlers/health"
	previewhandler "github.com/wrale/headless-auth-proxy/cmd/headless-auth-proxy/handlers/preview"
	"github.com/wrale/headless-auth-proxy/cmd/headless-auth-proxy/handlers/staticpaths"
	"github.com/wrale/headless-auth-proxy/internal/auth"
	"github.com/wrale/headless-auth-proxy/internal/preview"
	"github.com/wrale/headless-auth-proxy/internal/state"
	"github.com/wrale/headless-auth-proxy/internal/token"
)

// authPath serves the authorization handler and receives provider callbacks
const authPath = "/api/auth"

type server struct {
	cfg     Config
	router  *chi.Mux
	tokens  token.Store
	preview *preview.Manager
	state   authorize.StateGuard
	auth    auth.Authorizer
	logger  *zap.SugaredLogger
}

func newServer(cfg Config, tokens token.Store, logger *zap.SugaredLogger) (*server, error) {
	previewManager, err := preview.NewManager(preview.Config{
		Secret:   []byte(cfg.PreviewSecret),
		BypassID: cfg.PreviewBypassID,
		MaxAge:   cfg.PreviewMaxAge,
		Secure:   cfg.CookieSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating preview manager: %w", err)
	}

	// Configure OAuth client
	oauth := &oauth2.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		Scopes:       cfg.OAuth.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.OAuth.AuthorizationEndpoint,
			TokenURL: cfg.OAuth.TokenEndpoint,
		},
	}

	srv := &server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		tokens:  tokens,
		preview: previewManager,
		auth: auth.NewClient(auth.Config{
			OAuth:        oauth,
			Tokens:       tokens,
			CallbackPath: authPath,
		}),
		logger: logger,
	}

	if cfg.OAuth.RequireState {
		stateManager, err := state.NewManager(state.Config{
			Secret: []byte(cfg.PreviewSecret),
			Secure: cfg.CookieSecure,
		})
		if err != nil {
			return nil, fmt.Errorf("creating state manager: %w", err)
		}
		srv.state = stateManager
	}

	// Set up middleware
	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.RealIP)
	srv.router.Use(middleware.Logger)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(middleware.Timeout(30 * time.Second))
	srv.router.Use(previewManager.Middleware)

	srv.routes()

	return srv, nil
}

func (s *server) routes() {
	s.router.Method(http.MethodGet, "/health", health.New(s.tokens).WithVersion(Version))

	s.router.Method(http.MethodGet, authPath, authorize.New(authorize.Config{
		Authorizer: s.auth,
		Tokens:     s.tokens,
		Preview:    s.preview,
		State:      s.state,
		Logger:     s.logger.Named("authorize"),
	}))

	previews := previewhandler.New(s.preview, s.logger.Named("preview"))
	s.router.Get("/api/exit-preview", previews.HandleExit)

	// JSON endpoints read by the front end build and browser code
	s.router.Group(func(r chi.Router) {
		if len(s.cfg.CORSAllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   s.cfg.CORSAllowedOrigins,
				AllowedMethods:   []string{http.MethodGet},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}

		r.Method(http.MethodGet, "/api/static-paths", staticpaths.New())
		r.Get("/api/preview", previews.HandleStatus)
	})
}

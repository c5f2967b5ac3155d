package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wrale/headless-auth-proxy/internal/token"
)

// Version is set by the build process
var Version = "dev"

func main() {
	// Load configuration from environment
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	tokens, closeTokens, err := newTokenStore(cfg)
	if err != nil {
		logger.Fatalw("Error creating token store", "error", err)
	}
	defer func() {
		if err := closeTokens(); err != nil {
			logger.Errorw("Error closing token store", "error", err)
		}
	}()

	srv, err := newServer(cfg, tokens, logger)
	if err != nil {
		logger.Fatalw("Error creating server", "error", err)
	}

	// Create HTTP server with proper timeout configurations
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infow("Server listening", "port", cfg.Port, "token_store", cfg.TokenStore, "version", Version)
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Error starting server", "error", err)

	case <-shutdown:
		logger.Info("Starting shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Errorw("Error shutting down server", "error", err)
			if err := httpServer.Close(); err != nil {
				logger.Errorw("Error closing server", "error", err)
			}
		}
	}
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// newTokenStore builds the configured token store and its cleanup function
func newTokenStore(cfg Config) (token.Store, func() error, error) {
	opts := token.CookieOptions{
		Name:   cfg.TokenCookieName,
		TTL:    cfg.TokenTTL,
		Secure: cfg.CookieSecure,
	}

	if cfg.TokenStore != TokenStoreRedis {
		return token.NewCookieStore(opts), func() error { return nil }, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)

	// Verify Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return token.NewRedisStore(redisClient, opts), redisClient.Close, nil
}

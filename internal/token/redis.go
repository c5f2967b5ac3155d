package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenPrefix = "token:"

// RedisStore keeps tokens in Redis and only a session reference in the cookie
type RedisStore struct {
	client redis.UniversalClient
	opts   CookieOptions
}

// NewRedisStore creates a Redis-backed token store
func NewRedisStore(client redis.UniversalClient, opts CookieOptions) *RedisStore {
	return &RedisStore{
		client: client,
		opts:   opts.withDefaults(),
	}
}

// StoreAccessToken saves the token under a new session id and writes the
// session cookie
func (s *RedisStore) StoreAccessToken(ctx context.Context, w http.ResponseWriter, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	sessionID := uuid.NewString()
	if err := s.client.Set(ctx, tokenPrefix+sessionID, token, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	http.SetCookie(w, s.opts.cookie(sessionID))
	return nil
}

// AccessToken resolves the session cookie to its stored token
func (s *RedisStore) AccessToken(ctx context.Context, r *http.Request) (string, error) {
	sessionID, ok := readCookie(r, s.opts.Name)
	if !ok {
		return "", ErrNoToken
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", ErrNoToken
	}

	token, err := s.client.Get(ctx, tokenPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("getting token: %w", err)
	}

	return token, nil
}

// DiscardAccessToken drops the queued session cookie and deletes the token
// it refers to
func (s *RedisStore) DiscardAccessToken(ctx context.Context, w http.ResponseWriter) error {
	var keys []string
	for _, sessionID := range dropQueued(w, s.opts.Name) {
		if _, err := uuid.Parse(sessionID); err == nil {
			keys = append(keys, tokenPrefix+sessionID)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// CheckHealth verifies Redis connectivity
func (s *RedisStore) CheckHealth(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

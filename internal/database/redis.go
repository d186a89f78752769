package database

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/popcorn/internal/models"
	"github.com/liamwears/popcorn/internal/ui"
	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the redis client
type RedisClient struct {
	*redis.Client
	logger *log.Logger
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// NewRedisClient creates a new Redis client
func NewRedisClient(ctx context.Context, cfg RedisConfig, logger *log.Logger) (*RedisClient, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping Redis: %w", err)
	}

	logger.Println("Successfully connected to Redis")

	return &RedisClient{Client: client, logger: logger}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r.Client != nil {
		r.logger.Println("Closing Redis connection")
		return r.Client.Close()
	}
	return nil
}

// Health checks the Redis connection health
func (r *RedisClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.Ping(ctx).Err()
}

// SessionStore keeps per-session UI state (query, selection) in Redis
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *log.Logger
}

// NewSessionStore creates a new session store
func NewSessionStore(client redis.Cmdable, ttl time.Duration, logger *log.Logger) *SessionStore {
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("session:%s", id)
}

// Save stores the state of a session and refreshes its TTL
func (s *SessionStore) Save(ctx context.Context, state models.SessionState) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(state.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves the state of a session. A missing key yields
// ui.ErrStateNotFound.
func (s *SessionStore) Load(ctx context.Context, id uuid.UUID) (models.SessionState, error) {
	key := sessionKey(id)

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.SessionState{}, fmt.Errorf("%w: %s", ui.ErrStateNotFound, id)
	}
	if err != nil {
		return models.SessionState{}, fmt.Errorf("failed to get session: %w", err)
	}

	var state models.SessionState
	if err := json.Unmarshal(val, &state); err != nil {
		return models.SessionState{}, fmt.Errorf("invalid session state: %w", err)
	}

	// Refresh TTL on access; the state is still usable when this fails
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		s.logger.Printf("Failed to refresh TTL of session %s: %v", id, err)
	}

	return state, nil
}

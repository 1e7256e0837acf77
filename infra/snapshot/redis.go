// Package snapshot hosts the persistent session stores behind the core
// snapshot keeper.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	coresnap "github.com/autoride/autoride/core/snapshot"
)

// Config selects and configures the session snapshot store.
type Config struct {
	// Backend is "memory" or "redis".
	Backend string `json:"backend"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// TTLMinutes is the staleness window for restored sessions.
	TTLMinutes int `json:"ttl_minutes"`
}

// SetDefaults applies the standalone defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.TTLMinutes == 0 {
		c.TTLMinutes = int(coresnap.DefaultTTL / time.Minute)
	}
}

// Validate checks the backend selection.
func (c Config) Validate() error {
	switch c.Backend {
	case "memory", "redis":
		return nil
	default:
		return fmt.Errorf("snapshot: unknown backend %q", c.Backend)
	}
}

// TTL returns the staleness window.
func (c Config) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// NewStore builds the configured store.
func NewStore(cfg Config) (coresnap.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == "redis" {
		return NewRedisStore(cfg), nil
	}
	return coresnap.NewMemoryStore(), nil
}

// RedisStore persists snapshots in Redis as JSON values. Keys expire
// with the configured TTL so abandoned sessions clean themselves up
// even without a Clear.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(cfg Config) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &RedisStore{client: client, ttl: cfg.TTL()}
}

// Save writes the snapshot with expiry.
func (s *RedisStore) Save(ctx context.Context, snap coresnap.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(snap.SessionID), data, s.ttl).Err()
}

// Load reads a snapshot, mapping a missing key to ErrNotFound.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (coresnap.Snapshot, error) {
	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return coresnap.Snapshot{}, coresnap.ErrNotFound
	}
	if err != nil {
		return coresnap.Snapshot{}, err
	}
	var snap coresnap.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return coresnap.Snapshot{}, err
	}
	return snap, nil
}

// Clear removes the snapshot.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, key(sessionID)).Err()
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func key(sessionID string) string {
	return "autoride:session:" + sessionID
}

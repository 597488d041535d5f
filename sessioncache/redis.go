package sessioncache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	// Client is the redis client instance. Required.
	Client *redis.Client
	// KeyPrefix prefixes every cache key. Default "vertex:session:".
	KeyPrefix string
	// TTL bounds how long an entry survives. Default 24h; zero or negative
	// values fall back to the default so entries never accumulate forever.
	TTL time.Duration
}

// RedisStore is a Store backed by redis, for clients that share session
// hints across processes or restarts.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore creates a redis-backed store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("sessioncache: redis client is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "vertex:session:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &RedisStore{
		client:    cfg.Client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
	}, nil
}

func (r *RedisStore) key(clientID string) string {
	return r.keyPrefix + clientID
}

// Get returns the cached entry for clientID, or ErrNotFound.
func (r *RedisStore) Get(ctx context.Context, clientID string) (Entry, error) {
	raw, err := r.client.Get(ctx, r.key(clientID)).Result()
	if err == redis.Nil {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("sessioncache: get %s: %w", clientID, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Entry{}, fmt.Errorf("sessioncache: decode entry for %s: %w", clientID, err)
	}
	return entry, nil
}

// Put stores the entry for clientID with the configured TTL.
func (r *RedisStore) Put(ctx context.Context, clientID string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("sessioncache: encode entry for %s: %w", clientID, err)
	}
	if err := r.client.Set(ctx, r.key(clientID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("sessioncache: put %s: %w", clientID, err)
	}
	return nil
}

// Delete removes the entry for clientID.
func (r *RedisStore) Delete(ctx context.Context, clientID string) error {
	if err := r.client.Del(ctx, r.key(clientID)).Err(); err != nil {
		return fmt.Errorf("sessioncache: delete %s: %w", clientID, err)
	}
	return nil
}

// Close is a no-op; the redis client's lifetime belongs to the caller.
func (r *RedisStore) Close() error {
	return nil
}

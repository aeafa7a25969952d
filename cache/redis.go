package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed cache implementation, for deployments where
// several processes share one report cache.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a Redis-backed cache. Keys are stored under the
// given prefix; empty means "healthops:cache:".
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "healthops:cache:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get retrieves a value. Returns (nil, false) on miss, backend error or an
// invalid key; a cache read failure is treated as a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	full := c.prefix + key
	if ValidateKey(full) != nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, full).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value with the given TTL. TTL<=0 means no caching.
// The prefixed key must satisfy ValidateKey.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	full := c.prefix + key
	if err := ValidateKey(full); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, full, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// Delete removes a value. Idempotent, no error on miss.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	full := c.prefix + key
	if err := ValidateKey(full); err != nil {
		return err
	}
	if err := c.client.Del(ctx, full).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("cache: redis delete: %w", err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)

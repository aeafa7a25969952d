package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthops/health"
)

// CacheCheckerConfig configures the cache health checker.
type CacheCheckerConfig struct {
	// KeyPrefix prefixes the round-trip test key.
	// Default: "healthcheck:"
	KeyPrefix string

	// KeyTTL bounds the life of the test key in case cleanup fails.
	// Default: 30 seconds
	KeyTTL time.Duration

	// WarnLatency escalates to warning when the round trip takes longer.
	// Default: 250ms
	WarnLatency time.Duration
}

// CacheChecker probes a Redis cache by round-tripping a unique test key:
// write, read back, compare, delete. A value mismatch is treated as a hard
// failure, the same as a connection error.
type CacheChecker struct {
	client redis.UniversalClient
	config CacheCheckerConfig
}

// NewCacheChecker creates a cache checker over a Redis client.
func NewCacheChecker(client redis.UniversalClient, config CacheCheckerConfig) *CacheChecker {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "healthcheck:"
	}
	if config.KeyTTL <= 0 {
		config.KeyTTL = 30 * time.Second
	}
	if config.WarnLatency <= 0 {
		config.WarnLatency = 250 * time.Millisecond
	}
	return &CacheChecker{client: client, config: config}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check performs the cache round-trip check.
func (c *CacheChecker) Check(ctx context.Context) health.Result {
	start := time.Now()
	key := c.config.KeyPrefix + uuid.NewString()
	want := uuid.NewString()

	if err := c.client.Set(ctx, key, want, c.config.KeyTTL).Err(); err != nil {
		return health.Critical(fmt.Sprintf("cache write failed: %v", err)).
			WithDetail("error", err.Error()).
			WithResponseTime(time.Since(start))
	}

	got, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return health.Critical(fmt.Sprintf("cache read failed: %v", err)).
			WithDetail("error", err.Error()).
			WithResponseTime(time.Since(start))
	}
	if got != want {
		return health.Critical("cache round-trip value mismatch").
			WithDetail("error", "stored and retrieved values differ").
			WithResponseTime(time.Since(start))
	}

	// Cleanup is best-effort; the TTL collects leftovers.
	_ = c.client.Del(ctx, key).Err()

	elapsed := time.Since(start)
	details := c.diagnostics()

	if elapsed > c.config.WarnLatency {
		return health.Warning(fmt.Sprintf("cache responding slowly (%s)", elapsed.Round(time.Millisecond))).
			WithDetails(details).
			WithResponseTime(elapsed)
	}
	return health.Healthy("cache round-trip OK").
		WithDetails(details).
		WithResponseTime(elapsed)
}

func (c *CacheChecker) diagnostics() map[string]any {
	stats := c.client.PoolStats()
	return map[string]any{
		"pool_hits":    stats.Hits,
		"pool_misses":  stats.Misses,
		"total_conns":  stats.TotalConns,
		"idle_conns":   stats.IdleConns,
		"stale_conns":  stats.StaleConns,
		"pool_timeout": stats.Timeouts,
	}
}

var _ health.Checker = (*CacheChecker)(nil)

package checks

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/healthops/cache"
	"github.com/jonwraymond/healthops/health"
)

// StoreChecker probes the in-memory report store itself: it round-trips a
// unique key and, when the store is a MemoryCache, reports its usage
// counters.
type StoreChecker struct {
	store cache.Cache
}

// NewStoreChecker creates an in-memory store checker.
func NewStoreChecker(store cache.Cache) *StoreChecker {
	return &StoreChecker{store: store}
}

// Name returns the name of this checker.
func (c *StoreChecker) Name() string {
	return "store"
}

// Check performs the store round-trip check.
func (c *StoreChecker) Check(ctx context.Context) health.Result {
	start := time.Now()
	key := "healthcheck:store:" + uuid.NewString()
	want := []byte(uuid.NewString())

	if err := c.store.Set(ctx, key, want, 30*time.Second); err != nil {
		return health.Critical(fmt.Sprintf("store write failed: %v", err)).
			WithDetail("error", err.Error()).
			WithResponseTime(time.Since(start))
	}

	got, ok := c.store.Get(ctx, key)
	if !ok {
		return health.Critical("store read-back missed").
			WithDetail("error", "value not found after write").
			WithResponseTime(time.Since(start))
	}
	if !bytes.Equal(got, want) {
		return health.Critical("store round-trip value mismatch").
			WithDetail("error", "stored and retrieved values differ").
			WithResponseTime(time.Since(start))
	}
	_ = c.store.Delete(ctx, key)

	result := health.Healthy("in-memory store OK").WithResponseTime(time.Since(start))
	if mc, ok := c.store.(*cache.MemoryCache); ok {
		stats := mc.Stats()
		result = result.WithDetails(map[string]any{
			"entries": stats.Entries,
			"hits":    stats.Hits,
			"misses":  stats.Misses,
		})
	}
	return result
}

var _ health.Checker = (*StoreChecker)(nil)

package checks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// DatabaseCheckerConfig configures the database health checker.
type DatabaseCheckerConfig struct {
	// PingQuery is the trivial round-trip query. Default: "SELECT 1"
	PingQuery string

	// WarnLatency escalates the result to warning when the round trip
	// takes longer. Default: 500ms
	WarnLatency time.Duration

	// SizeQuery optionally returns the database size in bytes, gathered
	// best-effort for diagnostics. Empty disables it.
	SizeQuery string
}

// DatabaseChecker probes a SQL database with a trivial round-trip query.
// Connection failure is critical; a slow round trip is a warning. Pool
// diagnostics are gathered best-effort and never fail the check.
type DatabaseChecker struct {
	db     *sql.DB
	config DatabaseCheckerConfig
}

// NewDatabaseChecker creates a database checker over an open handle.
func NewDatabaseChecker(db *sql.DB, config DatabaseCheckerConfig) *DatabaseChecker {
	if config.PingQuery == "" {
		config.PingQuery = "SELECT 1"
	}
	if config.WarnLatency <= 0 {
		config.WarnLatency = 500 * time.Millisecond
	}
	return &DatabaseChecker{db: db, config: config}
}

// Name returns the name of this checker.
func (c *DatabaseChecker) Name() string {
	return "database"
}

// Check performs the database health check.
func (c *DatabaseChecker) Check(ctx context.Context) health.Result {
	start := time.Now()

	var one int
	if err := c.db.QueryRowContext(ctx, c.config.PingQuery).Scan(&one); err != nil {
		return health.Critical(fmt.Sprintf("database connection failed: %v", err)).
			WithDetail("error", err.Error()).
			WithResponseTime(time.Since(start))
	}
	elapsed := time.Since(start)

	details := c.diagnostics(ctx)

	if elapsed > c.config.WarnLatency {
		return health.Warning(fmt.Sprintf("database responding slowly (%s)", elapsed.Round(time.Millisecond))).
			WithDetails(details).
			WithResponseTime(elapsed)
	}
	return health.Healthy("database connection OK").
		WithDetails(details).
		WithResponseTime(elapsed)
}

// diagnostics gathers pool and size information best-effort. A diagnostics
// failure must not fail the check; it lands in the details as an error.
func (c *DatabaseChecker) diagnostics(ctx context.Context) map[string]any {
	stats := c.db.Stats()
	details := map[string]any{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}

	if c.config.SizeQuery != "" {
		var size int64
		if err := c.db.QueryRowContext(ctx, c.config.SizeQuery).Scan(&size); err != nil {
			details["error"] = fmt.Sprintf("size query failed: %v", err)
		} else {
			details["size_bytes"] = size
		}
	}
	return details
}

var _ health.Checker = (*DatabaseChecker)(nil)

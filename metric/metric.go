package metric

import (
	"context"
	"time"
)

// OverallCheckName is the check name used for run-level summary metrics.
const OverallCheckName = "overall"

// Metric is one append-only record of a check outcome. Records are never
// mutated after creation; retention cleanup is the only deletion path.
type Metric struct {
	ID         int64          `json:"id"`
	CheckName  string         `json:"check_name"`
	Status     string         `json:"status"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	DurationMS float64        `json:"duration_ms"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Filter narrows Query results. Zero values mean "any".
type Filter struct {
	CheckName string
	Status    string
	Since     time.Time
	Limit     int
}

// Store persists health metrics.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Create is append-only; stored records are never updated.
type Store interface {
	// Create appends one metric record.
	Create(ctx context.Context, m *Metric) error

	// Query returns records matching the filter, newest first.
	Query(ctx context.Context, f Filter) ([]*Metric, error)

	// DeleteOlderThan removes records with the given status recorded
	// before the cutoff, returning the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, status string) (int64, error)
}

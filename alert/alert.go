package alert

import (
	"context"
	"errors"
	"time"
)

// Severity levels for alerts.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

var (
	// ErrNotFound indicates no alert exists with the given ID.
	ErrNotFound = errors.New("alert: not found")

	// ErrAlreadyResolved indicates the alert is already resolved.
	ErrAlreadyResolved = errors.New("alert: already resolved")
)

// Alert is an operator-facing notification raised from a critical check
// result. At most one unresolved alert exists per SourceMetric at a time;
// its message is a snapshot of the first detection, not the latest.
type Alert struct {
	ID           string         `json:"id"`
	SourceMetric string         `json:"source_metric"`
	Severity     string         `json:"severity"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`

	Resolved        bool       `json:"resolved"`
	ResolvedBy      string     `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
}

// Store persists alerts.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Create must be atomic with respect to the one-unresolved-per-source
//     invariant: when an unresolved alert already exists for the source it
//     returns (false, nil) without creating a duplicate, even under
//     concurrent callers.
type Store interface {
	// FindUnresolved returns the unresolved alert for the source metric,
	// or nil when none exists.
	FindUnresolved(ctx context.Context, sourceMetric string) (*Alert, error)

	// Create inserts the alert unless an unresolved one already exists for
	// its source metric. Returns whether the alert was created.
	Create(ctx context.Context, a *Alert) (bool, error)

	// Resolve marks the alert resolved, recording actor, time and notes.
	Resolve(ctx context.Context, id, actor, notes string) error

	// Reopen clears the resolution fields of an alert.
	Reopen(ctx context.Context, id string) error

	// List returns alerts, newest first. Resolved alerts are included only
	// when includeResolved is set.
	List(ctx context.Context, includeResolved bool) ([]*Alert, error)
}

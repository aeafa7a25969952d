package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/health"
)

func reportWith(checks map[string]health.Result) *health.Report {
	return health.NewReport(checks, 50*time.Millisecond)
}

func TestCoordinator_RaisesAlertPerCriticalCheck(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	coord := NewCoordinator(store, nil)

	coord.Record(ctx, reportWith(map[string]health.Result{
		"database": health.Critical("connection refused").
			WithDetail("error", "dial tcp: connection refused"),
		"memory": health.Warning("84% used"),
		"cache":  health.Healthy("ok"),
	}))

	open, err := store.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("%d alerts raised, want 1 (critical only)", len(open))
	}
	a := open[0]
	if a.SourceMetric != "database" {
		t.Errorf("SourceMetric = %q, want database", a.SourceMetric)
	}
	if a.Severity != SeverityCritical {
		t.Errorf("Severity = %q, want critical", a.Severity)
	}
	if a.Title != "Health check critical: database" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Message != "connection refused" {
		t.Errorf("Message = %q", a.Message)
	}
	if a.Metadata["error"] != "dial tcp: connection refused" {
		t.Errorf("Metadata = %v", a.Metadata)
	}
	if a.ID == "" {
		t.Error("alert was created without an ID")
	}
}

func TestCoordinator_RepeatedCriticalDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	coord := NewCoordinator(store, nil)

	first := reportWith(map[string]health.Result{
		"database": health.Critical("connection refused"),
	})
	second := reportWith(map[string]health.Result{
		"database": health.Critical("still down, different message"),
	})

	coord.Record(ctx, first)
	coord.Record(ctx, second)

	open, _ := store.List(ctx, false)
	if len(open) != 1 {
		t.Fatalf("%d alerts after two critical runs, want 1", len(open))
	}
	// The surviving alert is the first detection's snapshot.
	if open[0].Message != "connection refused" {
		t.Errorf("Message = %q, want the original detection message", open[0].Message)
	}
}

func TestCoordinator_ResolvedAlertAllowsNewOne(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	coord := NewCoordinator(store, nil)

	critical := reportWith(map[string]health.Result{
		"database": health.Critical("connection refused"),
	})

	coord.Record(ctx, critical)
	open, _ := store.List(ctx, false)
	if len(open) != 1 {
		t.Fatalf("%d alerts, want 1", len(open))
	}
	if err := store.Resolve(ctx, open[0].ID, "astrid", "failover"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	coord.Record(ctx, critical)
	open, _ = store.List(ctx, false)
	if len(open) != 1 {
		t.Fatalf("%d open alerts after re-detection, want 1", len(open))
	}
	all, _ := store.List(ctx, true)
	if len(all) != 2 {
		t.Errorf("%d total alerts, want 2 (resolved + new)", len(all))
	}
}

// failingStore errors on every operation.
type failingStore struct{}

var errStore = errors.New("store offline")

func (failingStore) FindUnresolved(context.Context, string) (*Alert, error) {
	return nil, errStore
}
func (failingStore) Create(context.Context, *Alert) (bool, error) { return false, errStore }
func (failingStore) Resolve(context.Context, string, string, string) error {
	return errStore
}
func (failingStore) Reopen(context.Context, string) error { return errStore }
func (failingStore) List(context.Context, bool) ([]*Alert, error) {
	return nil, errStore
}

func TestCoordinator_StoreFailureIsContained(t *testing.T) {
	coord := NewCoordinator(failingStore{}, nil)

	// Must not panic or propagate the error.
	coord.Record(context.Background(), reportWith(map[string]health.Result{
		"database": health.Critical("down"),
		"cache":    health.Critical("down"),
	}))
}

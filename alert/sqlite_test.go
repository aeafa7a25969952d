package alert

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "alerts.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_CreateDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	created, err := store.Create(ctx, newAlert("a1", "database"))
	if err != nil || !created {
		t.Fatalf("first Create = (%v, %v), want (true, nil)", created, err)
	}
	created, err = store.Create(ctx, newAlert("a2", "database"))
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if created {
		t.Error("second Create for the same source should be suppressed")
	}

	open, err := store.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(open) != 1 || open[0].ID != "a1" {
		t.Errorf("open alerts = %+v, want only a1", open)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	in := newAlert("a1", "database")
	in.Metadata = map[string]any{"error": "connection refused", "attempts": 3.0}
	if _, err := store.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := store.FindUnresolved(ctx, "database")
	if err != nil {
		t.Fatalf("FindUnresolved: %v", err)
	}
	if out == nil {
		t.Fatal("FindUnresolved returned nil for an open alert")
	}
	if out.Title != in.Title || out.Message != in.Message || out.Severity != in.Severity {
		t.Errorf("round-tripped alert = %+v", out)
	}
	if out.Metadata["error"] != "connection refused" {
		t.Errorf("Metadata = %v", out.Metadata)
	}
	if out.CreatedAt.IsZero() {
		t.Error("CreatedAt was not persisted")
	}
}

func TestSQLiteStore_ResolveLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	_, _ = store.Create(ctx, newAlert("a1", "database"))

	if err := store.Resolve(ctx, "a1", "astrid", "restarted primary"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a, _ := store.FindUnresolved(ctx, "database"); a != nil {
		t.Error("resolved alert still reported unresolved")
	}

	if err := store.Resolve(ctx, "a1", "astrid", ""); err != ErrAlreadyResolved {
		t.Errorf("second Resolve = %v, want ErrAlreadyResolved", err)
	}
	if err := store.Resolve(ctx, "missing", "astrid", ""); err != ErrNotFound {
		t.Errorf("Resolve(missing) = %v, want ErrNotFound", err)
	}

	all, err := store.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("List(true) = %d alerts, want 1", len(all))
	}
	a := all[0]
	if !a.Resolved || a.ResolvedBy != "astrid" || a.ResolutionNotes != "restarted primary" {
		t.Errorf("resolution fields = %+v", a)
	}
	if a.ResolvedAt == nil || a.ResolvedAt.IsZero() {
		t.Error("ResolvedAt was not recorded")
	}

	// The source is free for a new alert once the old one is resolved.
	created, err := store.Create(ctx, newAlert("a2", "database"))
	if err != nil || !created {
		t.Errorf("Create after resolve = (%v, %v), want (true, nil)", created, err)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	_, _ = store.Create(ctx, newAlert("a1", "database"))
	_ = store.Resolve(ctx, "a1", "astrid", "notes")

	if err := store.Reopen(ctx, "a1"); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	a, err := store.FindUnresolved(ctx, "database")
	if err != nil {
		t.Fatalf("FindUnresolved: %v", err)
	}
	if a == nil || a.ID != "a1" {
		t.Fatal("reopened alert not reported unresolved")
	}
	if a.Resolved || a.ResolvedBy != "" || a.ResolvedAt != nil || a.ResolutionNotes != "" {
		t.Errorf("resolution fields not cleared: %+v", a)
	}

	if err := store.Reopen(ctx, "missing"); err != ErrNotFound {
		t.Errorf("Reopen(missing) = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	older := newAlert("a1", "database")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newAlert("a2", "cache")
	_, _ = store.Create(ctx, older)
	_, _ = store.Create(ctx, newer)

	open, err := store.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(open) != 2 || open[0].ID != "a2" || open[1].ID != "a1" {
		t.Errorf("List order wrong: %+v", open)
	}
}

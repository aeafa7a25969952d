package alert

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory alert store for tests and single-process
// runs without persistence.
type MemoryStore struct {
	mu     sync.Mutex
	alerts []*Alert
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FindUnresolved returns the unresolved alert for the source, or nil.
func (s *MemoryStore) FindUnresolved(_ context.Context, sourceMetric string) (*Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.findOpenLocked(sourceMetric); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

// Create inserts the alert unless an unresolved one already exists for its
// source. The check and insert happen under one lock, so the dedup
// invariant holds under concurrent callers.
func (s *MemoryStore) Create(_ context.Context, a *Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findOpenLocked(a.SourceMetric) != nil {
		return false, nil
	}
	cp := *a
	s.alerts = append(s.alerts, &cp)
	return true, nil
}

// Resolve marks the alert resolved.
func (s *MemoryStore) Resolve(_ context.Context, id, actor, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.ID != id {
			continue
		}
		if a.Resolved {
			return ErrAlreadyResolved
		}
		now := time.Now().UTC()
		a.Resolved = true
		a.ResolvedBy = actor
		a.ResolvedAt = &now
		a.ResolutionNotes = notes
		return nil
	}
	return ErrNotFound
}

// Reopen clears the resolution fields of an alert.
func (s *MemoryStore) Reopen(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.ID != id {
			continue
		}
		a.Resolved = false
		a.ResolvedBy = ""
		a.ResolvedAt = nil
		a.ResolutionNotes = ""
		return nil
	}
	return ErrNotFound
}

// List returns alerts, newest first.
func (s *MemoryStore) List(_ context.Context, includeResolved bool) ([]*Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Alert, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if a.Resolved && !includeResolved {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) findOpenLocked(sourceMetric string) *Alert {
	for _, a := range s.alerts {
		if a.SourceMetric == sourceMetric && !a.Resolved {
			return a
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)

package metric

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory metric store for tests and persistence-free
// runs.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	metrics []*Metric
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Create appends one metric record.
func (s *MemoryStore) Create(_ context.Context, m *Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	cp.ID = s.nextID
	s.nextID++
	s.metrics = append(s.metrics, &cp)
	return nil
}

// Query returns records matching the filter, newest first.
func (s *MemoryStore) Query(_ context.Context, f Filter) ([]*Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Metric
	for i := len(s.metrics) - 1; i >= 0; i-- {
		m := s.metrics[i]
		if f.CheckName != "" && m.CheckName != f.CheckName {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if !f.Since.IsZero() && m.RecordedAt.Before(f.Since) {
			continue
		}
		cp := *m
		out = append(out, &cp)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// DeleteOlderThan removes records with the given status recorded before the
// cutoff.
func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time, status string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*Metric
	var deleted int64
	for _, m := range s.metrics {
		if m.Status == status && m.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	s.metrics = kept
	return deleted, nil
}

var _ Store = (*MemoryStore)(nil)

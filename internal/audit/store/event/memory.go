// Package event persists audit events. The table is append-only; nothing
// updates or deletes a recorded event.
package event

import (
	"context"
	"sync"

	"labfhir/internal/audit"
	id "labfhir/pkg/domain"
)

// MemoryStore is an in-memory event store for tests and single-process runs.
type MemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
	seen   map[id.EventID]struct{}
}

// NewMemoryStore constructs an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[id.EventID]struct{})}
}

func (s *MemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !event.ID.IsNil() {
		if _, ok := s.seen[event.ID]; ok {
			return nil
		}
		s.seen[event.ID] = struct{}{}
	}
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListByReport(_ context.Context, reportID id.ReportID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, e := range s.events {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]audit.Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Clear resets the store between tests.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.seen = make(map[id.EventID]struct{})
}

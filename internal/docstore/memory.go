package docstore

import (
	"context"
	"sync"

	"labfhir/pkg/platform/sentinel"
)

// MemoryStore holds documents in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory constructs an empty in-memory document store.
func NewMemory() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, contentHash string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[contentHash]; exists {
		return nil
	}
	s.docs[contentHash] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, contentHash string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[contentHash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Exists(_ context.Context, contentHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[contentHash]
	return ok, nil
}

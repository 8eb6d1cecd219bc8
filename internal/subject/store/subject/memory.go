package subject

import (
	"context"
	"sync"

	"labfhir/internal/subject/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
)

// MemoryStore holds subjects in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	subjects   map[id.SubjectID]*models.Subject
	byExternal map[string]id.SubjectID
	order      []id.SubjectID
}

// NewMemory constructs an empty in-memory subject store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		subjects:   make(map[id.SubjectID]*models.Subject),
		byExternal: make(map[string]id.SubjectID),
	}
}

func (s *MemoryStore) Create(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subjects[subject.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, taken := s.byExternal[subject.ExternalSubjectID]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.subjects[subject.ID] = subject.Clone()
	s.byExternal[subject.ExternalSubjectID] = subject.ID
	s.order = append(s.order, subject.ID)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.subjects[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return stored.Clone(), nil
}

func (s *MemoryStore) GetByExternalID(_ context.Context, externalID string) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subjectID, ok := s.byExternal[externalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.subjects[subjectID].Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Subject, 0, len(s.order))
	for _, subjectID := range s.order {
		out = append(out, s.subjects[subjectID].Clone())
	}
	return out, nil
}

package artifact

import (
	"context"
	"sync"

	"labfhir/internal/bundle/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
)

// MemoryStore holds artifacts in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[id.ArtifactID]*models.BundleArtifact
	byReport map[id.ReportID][]*models.BundleArtifact
}

// NewMemory constructs an empty in-memory artifact store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[id.ArtifactID]*models.BundleArtifact),
		byReport: make(map[id.ReportID][]*models.BundleArtifact),
	}
}

func (s *MemoryStore) Create(_ context.Context, artifact *models.BundleArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[artifact.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := artifact.Clone()
	s.byID[artifact.ID] = stored
	s.byReport[artifact.ReportID] = append(s.byReport[artifact.ReportID], stored)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, artifactID id.ArtifactID) (*models.BundleArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.byID[artifactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return stored.Clone(), nil
}

func (s *MemoryStore) LatestByReport(_ context.Context, reportID id.ReportID) (*models.BundleArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifacts := s.byReport[reportID]
	if len(artifacts) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return artifacts[len(artifacts)-1].Clone(), nil
}

func (s *MemoryStore) ListByReport(_ context.Context, reportID id.ReportID) ([]*models.BundleArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifacts := s.byReport[reportID]
	out := make([]*models.BundleArtifact, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, a.Clone())
	}
	return out, nil
}

package version

import (
	"context"
	"sync"

	"labfhir/internal/ledger/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
)

// MemoryStore holds the ledger in process memory. Safe for concurrent use.
// Versions per report are kept sorted by number; edits per version in
// append order.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[id.VersionID]*models.Version
	byReport map[id.ReportID][]*models.Version
	edits    map[id.VersionID][]models.EditHistoryEntry
}

// NewMemory constructs an empty in-memory ledger store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[id.VersionID]*models.Version),
		byReport: make(map[id.ReportID][]*models.Version),
		edits:    make(map[id.VersionID][]models.EditHistoryEntry),
	}
}

func (s *MemoryStore) CreateVersion(_ context.Context, version *models.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[version.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, v := range s.byReport[version.ReportID] {
		if v.Number == version.Number {
			return sentinel.ErrConflict
		}
	}

	stored := version.Clone()
	s.byID[version.ID] = stored

	// Insert keeping ascending number order.
	versions := s.byReport[version.ReportID]
	pos := len(versions)
	for i, v := range versions {
		if v.Number > stored.Number {
			pos = i
			break
		}
	}
	versions = append(versions, nil)
	copy(versions[pos+1:], versions[pos:])
	versions[pos] = stored
	s.byReport[version.ReportID] = versions
	return nil
}

func (s *MemoryStore) GetVersion(_ context.Context, versionID id.VersionID) (*models.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.byID[versionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return stored.Clone(), nil
}

func (s *MemoryStore) ListVersions(_ context.Context, reportID id.ReportID) ([]*models.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.byReport[reportID]
	out := make([]*models.Version, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.Clone())
	}
	return out, nil
}

func (s *MemoryStore) LatestValid(_ context.Context, reportID id.ReportID) (*models.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.byReport[reportID]
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].IsValid() {
			return versions[i].Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) CountVersions(_ context.Context, reportID id.ReportID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byReport[reportID]), nil
}

func (s *MemoryStore) AppendEdits(_ context.Context, entries []models.EditHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		if _, ok := s.byID[entry.VersionID]; !ok {
			return sentinel.ErrNotFound
		}
	}
	for _, entry := range entries {
		s.edits[entry.VersionID] = append(s.edits[entry.VersionID], entry)
	}
	return nil
}

func (s *MemoryStore) ListEdits(_ context.Context, versionID id.VersionID) ([]models.EditHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.EditHistoryEntry, len(s.edits[versionID]))
	copy(out, s.edits[versionID])
	return out, nil
}

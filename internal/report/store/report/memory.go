package report

import (
	"context"
	"sync"

	"labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
)

// MemoryStore holds reports in process memory. Safe for concurrent use.
// All reads and writes copy, so callers never alias stored state.
type MemoryStore struct {
	mu        sync.RWMutex
	reports   map[id.ReportID]*models.Report
	order     []id.ReportID
	canonical map[string]id.ReportID
}

// NewMemory constructs an empty in-memory report store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		reports:   make(map[id.ReportID]*models.Report),
		canonical: make(map[string]id.ReportID),
	}
}

func (s *MemoryStore) Create(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return sentinel.ErrConflict
	}
	if !report.IsDuplicate() {
		if _, taken := s.canonical[report.ContentHash]; taken {
			return sentinel.ErrConflict
		}
		s.canonical[report.ContentHash] = report.ID
	}
	s.reports[report.ID] = report.Clone()
	s.order = append(s.order, report.ID)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, reportID id.ReportID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.reports[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return stored.Clone(), nil
}

func (s *MemoryStore) FindCanonicalByHash(_ context.Context, contentHash string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reportID, ok := s.canonical[contentHash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.reports[reportID].Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[report.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.reports[report.ID] = report.Clone()
	return nil
}

func (s *MemoryStore) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Report
	for _, reportID := range s.order {
		if r := s.reports[reportID]; r.SubjectID == subjectID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByStatus(_ context.Context, status models.Status) ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Report
	for _, reportID := range s.order {
		if r := s.reports[reportID]; r.Status == status {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Clear drops all stored reports. Test helper.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = make(map[id.ReportID]*models.Report)
	s.canonical = make(map[string]id.ReportID)
	s.order = nil
}

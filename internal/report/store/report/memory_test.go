package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
)

type ReportStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestReportStoreSuite(t *testing.T) {
	suite.Run(t, new(ReportStoreSuite))
}

func (s *ReportStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

const testHash = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func (s *ReportStoreSuite) newReport(subjectID id.SubjectID, hash string) *models.Report {
	report, err := models.NewReport(id.NewReportID(), subjectID, "cbc.pdf", "application/pdf", hash, time.Now())
	s.Require().NoError(err)
	return report
}

func (s *ReportStoreSuite) TestCreateAndGet() {
	s.Run("creates and finds report by ID", func() {
		report := s.newReport(id.NewSubjectID(), testHash)
		s.Require().NoError(s.store.Create(s.ctx, report))

		found, err := s.store.Get(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(report.ContentHash, found.ContentHash)
		s.Equal(models.StatusUploaded, found.Status)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.Get(s.ctx, id.NewReportID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects a second report with the same ID", func() {
		report := s.newReport(id.NewSubjectID(), "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
		s.Require().NoError(s.store.Create(s.ctx, report))
		s.ErrorIs(s.store.Create(s.ctx, report), sentinel.ErrConflict)
	})

	s.Run("stored report is isolated from caller mutation", func() {
		report := s.newReport(id.NewSubjectID(), "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc")
		s.Require().NoError(s.store.Create(s.ctx, report))

		report.OriginalFilename = "mutated.pdf"

		found, err := s.store.Get(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal("cbc.pdf", found.OriginalFilename)
	})
}

func (s *ReportStoreSuite) TestFindCanonicalByHash() {
	s.Run("finds the canonical report", func() {
		report := s.newReport(id.NewSubjectID(), testHash)
		s.Require().NoError(s.store.Create(s.ctx, report))

		found, err := s.store.FindCanonicalByHash(s.ctx, testHash)
		s.Require().NoError(err)
		s.Equal(report.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unseen hash", func() {
		_, err := s.store.FindCanonicalByHash(s.ctx, "dddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate records never shadow the canonical report", func() {
		canonical := s.newReport(id.NewSubjectID(), "1111111111111111111111111111111111111111111111111111111111111111")
		s.Require().NoError(s.store.Create(s.ctx, canonical))

		duplicate, err := models.NewDuplicateReport(id.NewReportID(), id.NewSubjectID(),
			"resubmit.pdf", "application/pdf", canonical.ContentHash, canonical.ID, time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.store.Create(s.ctx, duplicate))

		found, err := s.store.FindCanonicalByHash(s.ctx, canonical.ContentHash)
		s.Require().NoError(err)
		s.Equal(canonical.ID, found.ID)
	})

	s.Run("second canonical report with same hash conflicts", func() {
		first := s.newReport(id.NewSubjectID(), "2222222222222222222222222222222222222222222222222222222222222222")
		s.Require().NoError(s.store.Create(s.ctx, first))

		second := s.newReport(id.NewSubjectID(), first.ContentHash)
		s.ErrorIs(s.store.Create(s.ctx, second), sentinel.ErrConflict)
	})
}

func (s *ReportStoreSuite) TestUpdate() {
	s.Run("persists status changes", func() {
		report := s.newReport(id.NewSubjectID(), testHash)
		s.Require().NoError(s.store.Create(s.ctx, report))

		s.Require().NoError(report.Transition(models.StatusParsing, time.Now()))
		s.Require().NoError(s.store.Update(s.ctx, report))

		found, err := s.store.Get(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusParsing, found.Status)
	})

	s.Run("returns ErrNotFound for unknown report", func() {
		report := s.newReport(id.NewSubjectID(), "3333333333333333333333333333333333333333333333333333333333333333")
		s.Require().ErrorIs(s.store.Update(s.ctx, report), sentinel.ErrNotFound)
	})
}

func (s *ReportStoreSuite) TestListing() {
	s.Run("lists by subject in creation order", func() {
		subjectID := id.NewSubjectID()
		first := s.newReport(subjectID, "4444444444444444444444444444444444444444444444444444444444444444")
		second := s.newReport(subjectID, "5555555555555555555555555555555555555555555555555555555555555555")
		other := s.newReport(id.NewSubjectID(), "6666666666666666666666666666666666666666666666666666666666666666")

		s.Require().NoError(s.store.Create(s.ctx, first))
		s.Require().NoError(s.store.Create(s.ctx, other))
		s.Require().NoError(s.store.Create(s.ctx, second))

		reports, err := s.store.ListBySubject(s.ctx, subjectID)
		s.Require().NoError(err)
		s.Require().Len(reports, 2)
		s.Equal(first.ID, reports[0].ID)
		s.Equal(second.ID, reports[1].ID)
	})

	s.Run("lists by status", func() {
		report := s.newReport(id.NewSubjectID(), "7777777777777777777777777777777777777777777777777777777777777777")
		s.Require().NoError(s.store.Create(s.ctx, report))

		uploaded, err := s.store.ListByStatus(s.ctx, models.StatusUploaded)
		s.Require().NoError(err)
		s.NotEmpty(uploaded)

		completed, err := s.store.ListByStatus(s.ctx, models.StatusCompleted)
		s.Require().NoError(err)
		s.Empty(completed)
	})
}

//go:build integration

package report_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"labfhir/internal/report/models"
	reportstore "labfhir/internal/report/store/report"
	subjectmodels "labfhir/internal/subject/models"
	subjectstore "labfhir/internal/subject/store/subject"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
	"labfhir/pkg/testutil/containers"
)

type PostgresReportStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *reportstore.PostgresStore
	subjects *subjectstore.PostgresStore
}

func TestPostgresReportStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresReportStoreSuite))
}

func (s *PostgresReportStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = reportstore.NewPostgres(s.postgres.DB)
	s.subjects = subjectstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresReportStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "subjects"))
}

func (s *PostgresReportStoreSuite) seedSubject(externalID string) id.SubjectID {
	subject, err := subjectmodels.NewSubject(id.NewSubjectID(), externalID,
		"Integration Subject", subjectmodels.SubjectHuman, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.subjects.Create(context.Background(), subject))
	return subject.ID
}

func testHash(c string) string {
	return strings.Repeat(c, 64)
}

func (s *PostgresReportStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	subjectID := s.seedSubject("LAB-PG-001")

	report, err := models.NewReport(id.NewReportID(), subjectID,
		"cbc-panel.pdf", "application/pdf", testHash("a"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, report))

	found, err := s.store.Get(ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(report.ID, found.ID)
	s.Equal(subjectID, found.SubjectID)
	s.Equal("cbc-panel.pdf", found.OriginalFilename)
	s.Equal("application/pdf", found.MimeType)
	s.Equal(testHash("a"), found.ContentHash)
	s.Equal(models.StatusUploaded, found.Status)
	s.Nil(found.DuplicateOf)
	s.WithinDuration(report.CreatedAt, found.CreatedAt, time.Second)

	_, err = s.store.Get(ctx, id.NewReportID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestCanonicalHashRace hammers the dedup gate's storage backstop: when
// concurrent submissions race past the find-then-insert check, the partial
// unique index must let exactly one canonical row through.
func (s *PostgresReportStoreSuite) TestCanonicalHashRace() {
	ctx := context.Background()
	subjectID := s.seedSubject("LAB-PG-RACE")
	hash := testHash("f")
	const goroutines = 20

	var wg sync.WaitGroup
	var created atomic.Int32
	var conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := models.NewReport(id.NewReportID(), subjectID,
				"race.pdf", "application/pdf", hash, time.Now())
			if err != nil {
				return
			}
			switch err := s.store.Create(ctx, report); {
			case err == nil:
				created.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load(), "exactly one canonical report per hash")
	s.Equal(int32(goroutines-1), conflicts.Load(), "every loser surfaces as a conflict")

	canonical, err := s.store.FindCanonicalByHash(ctx, hash)
	s.Require().NoError(err)
	s.Nil(canonical.DuplicateOf)
}

func (s *PostgresReportStoreSuite) TestDuplicateRecordsExemptFromHashIndex() {
	ctx := context.Background()
	subjectID := s.seedSubject("LAB-PG-DUP")

	canonical, err := models.NewReport(id.NewReportID(), subjectID,
		"original.pdf", "application/pdf", testHash("b"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, canonical))

	// Several duplicate records may carry the same hash as long as exactly
	// one canonical row owns it.
	for i := 0; i < 3; i++ {
		duplicate, err := models.NewDuplicateReport(id.NewReportID(), subjectID,
			"resubmit.pdf", "application/pdf", canonical.ContentHash, canonical.ID, time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.store.Create(ctx, duplicate))
	}

	found, err := s.store.FindCanonicalByHash(ctx, canonical.ContentHash)
	s.Require().NoError(err)
	s.Equal(canonical.ID, found.ID)

	reports, err := s.store.ListBySubject(ctx, subjectID)
	s.Require().NoError(err)
	s.Len(reports, 4)
}

func (s *PostgresReportStoreSuite) TestDuplicateOfRoundTrip() {
	ctx := context.Background()
	subjectID := s.seedSubject("LAB-PG-DUPRT")

	canonical, err := models.NewReport(id.NewReportID(), subjectID,
		"original.pdf", "application/pdf", testHash("c"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, canonical))

	duplicate, err := models.NewDuplicateReport(id.NewReportID(), subjectID,
		"resubmit.pdf", "application/pdf", canonical.ContentHash, canonical.ID, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, duplicate))

	found, err := s.store.Get(ctx, duplicate.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.DuplicateOf)
	s.Equal(canonical.ID, *found.DuplicateOf)
	s.Equal(models.StatusDuplicate, found.Status)
}

func (s *PostgresReportStoreSuite) TestUpdatePersistsTransitions() {
	ctx := context.Background()
	subjectID := s.seedSubject("LAB-PG-UPD")

	report, err := models.NewReport(id.NewReportID(), subjectID,
		"cbc.pdf", "application/pdf", testHash("d"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, report))

	s.Require().NoError(report.Transition(models.StatusParsing, time.Now()))
	s.Require().NoError(s.store.Update(ctx, report))

	s.Require().NoError(report.MarkFailed(models.ReasonProcessingError, "extractor crashed", time.Now()))
	s.Require().NoError(s.store.Update(ctx, report))

	found, err := s.store.Get(ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusFailed, found.Status)
	s.Equal(models.ReasonProcessingError, found.ErrorCode)
	s.Equal("extractor crashed", found.ErrorMessage)

	unknown, err := models.NewReport(id.NewReportID(), subjectID,
		"ghost.pdf", "application/pdf", testHash("e"), time.Now())
	s.Require().NoError(err)
	s.ErrorIs(s.store.Update(ctx, unknown), sentinel.ErrNotFound)
}

func (s *PostgresReportStoreSuite) TestListBySubjectOrdering() {
	ctx := context.Background()
	subjectID := s.seedSubject("LAB-PG-LIST")
	otherID := s.seedSubject("LAB-PG-OTHER")

	base := time.Now().Add(-time.Hour)
	var want []id.ReportID
	for i, c := range []string{"1", "2", "3"} {
		report, err := models.NewReport(id.NewReportID(), subjectID,
			"report.pdf", "application/pdf", testHash(c), base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
		s.Require().NoError(s.store.Create(ctx, report))
		want = append(want, report.ID)
	}
	other, err := models.NewReport(id.NewReportID(), otherID,
		"other.pdf", "application/pdf", testHash("9"), base)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, other))

	reports, err := s.store.ListBySubject(ctx, subjectID)
	s.Require().NoError(err)
	s.Require().Len(reports, 3)
	for i, report := range reports {
		s.Equal(want[i], report.ID)
	}

	failed, err := s.store.ListByStatus(ctx, models.StatusFailed)
	s.Require().NoError(err)
	s.Empty(failed)
}

//go:build integration

package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"labfhir/internal/audit"
	eventstore "labfhir/internal/audit/store/event"
	id "labfhir/pkg/domain"
	"labfhir/pkg/testutil/containers"
)

type PostgresEventStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *eventstore.PostgresStore
}

func TestPostgresEventStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresEventStoreSuite))
}

func (s *PostgresEventStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = eventstore.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresEventStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *PostgresEventStoreSuite) newEvent(reportID id.ReportID, action audit.Action, at time.Time) audit.Event {
	return audit.Event{
		ID:        id.NewEventID(),
		Timestamp: at,
		Action:    action,
		ReportID:  reportID,
		SubjectID: id.NewSubjectID(),
		Actor:     "svc-uploader",
		Outcome:   "uploaded",
		Detail:    "content hash accepted",
		RequestID: "req-123",
		ClientIP:  "203.0.113.7",
		Client:    "Chrome on macOS",
	}
}

// TestAppendIdempotent replays the same event twice, as a crashed worker
// would on redelivery, and expects exactly one row.
func (s *PostgresEventStoreSuite) TestAppendIdempotent() {
	ctx := context.Background()
	reportID := id.NewReportID()
	event := s.newEvent(reportID, audit.ActionReportSubmitted, time.Now())

	s.Require().NoError(s.store.Append(ctx, event))
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListByReport(ctx, reportID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)

	found := events[0]
	s.Equal(event.ID, found.ID)
	s.Equal(audit.ActionReportSubmitted, found.Action)
	s.Equal(reportID, found.ReportID)
	s.Equal(event.SubjectID, found.SubjectID)
	s.Equal("svc-uploader", found.Actor)
	s.Equal("uploaded", found.Outcome)
	s.Equal("content hash accepted", found.Detail)
	s.Equal("req-123", found.RequestID)
	s.Equal("203.0.113.7", found.ClientIP)
	s.Equal("Chrome on macOS", found.Client)
	s.WithinDuration(event.Timestamp, found.Timestamp, time.Second)
}

func (s *PostgresEventStoreSuite) TestListByReportOldestFirst() {
	ctx := context.Background()
	reportID := id.NewReportID()
	base := time.Now().Add(-time.Minute)

	submitted := s.newEvent(reportID, audit.ActionReportSubmitted, base)
	changed := s.newEvent(reportID, audit.ActionStateChanged, base.Add(2*time.Second))
	generated := s.newEvent(reportID, audit.ActionBundleGenerated, base.Add(4*time.Second))
	other := s.newEvent(id.NewReportID(), audit.ActionReportSubmitted, base.Add(time.Second))

	// Insert out of chronological order; the store sorts on read.
	for _, event := range []audit.Event{generated, submitted, other, changed} {
		s.Require().NoError(s.store.Append(ctx, event))
	}

	events, err := s.store.ListByReport(ctx, reportID)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(submitted.ID, events[0].ID)
	s.Equal(changed.ID, events[1].ID)
	s.Equal(generated.ID, events[2].ID)

	events, err = s.store.ListByReport(ctx, id.NewReportID())
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *PostgresEventStoreSuite) TestListRecentNewestFirstWithLimit() {
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	var newest audit.Event
	for i := 0; i < 5; i++ {
		newest = s.newEvent(id.NewReportID(), audit.ActionStateChanged, base.Add(time.Duration(i)*time.Second))
		s.Require().NoError(s.store.Append(ctx, newest))
	}

	events, err := s.store.ListRecent(ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(newest.ID, events[0].ID)
	s.True(events[0].Timestamp.After(events[1].Timestamp))
	s.True(events[1].Timestamp.After(events[2].Timestamp))
}

// TestNullableIDs covers events without report or subject context, e.g.
// verification sweeps: NULL columns come back as zero IDs.
func (s *PostgresEventStoreSuite) TestNullableIDs() {
	ctx := context.Background()
	event := audit.Event{
		ID:        id.NewEventID(),
		Timestamp: time.Now(),
		Action:    audit.ActionStateChanged,
		Outcome:   "sweep completed",
	}

	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.True(events[0].ReportID.IsNil())
	s.True(events[0].SubjectID.IsNil())
	s.Equal("sweep completed", events[0].Outcome)
}

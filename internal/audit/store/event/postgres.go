package event

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"labfhir/internal/audit"
	id "labfhir/pkg/domain"
	txcontext "labfhir/pkg/platform/tx"
)

const eventColumns = "id, timestamp, action, report_id, subject_id, actor, outcome, detail, request_id, client_ip, client"

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed event store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event audit.Event) error {
	eventID := event.ID
	if eventID.IsNil() {
		eventID = id.NewEventID()
	}

	query := `
		INSERT INTO audit_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(eventID),
		event.Timestamp,
		string(event.Action),
		nullableUUID(uuid.UUID(event.ReportID)),
		nullableUUID(uuid.UUID(event.SubjectID)),
		event.Actor,
		event.Outcome,
		event.Detail,
		event.RequestID,
		event.ClientIP,
		event.Client,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByReport(ctx context.Context, reportID id.ReportID) ([]audit.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE report_id = $1
		ORDER BY timestamp, id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, uuid.UUID(reportID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func nullableUUID(u uuid.UUID) *uuid.UUID {
	if u == uuid.Nil {
		return nil
	}
	return &u
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			event     audit.Event
			eventID   uuid.UUID
			action    string
			reportID  *uuid.UUID
			subjectID *uuid.UUID
		)
		err := rows.Scan(
			&eventID,
			&event.Timestamp,
			&action,
			&reportID,
			&subjectID,
			&event.Actor,
			&event.Outcome,
			&event.Detail,
			&event.RequestID,
			&event.ClientIP,
			&event.Client,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.ID = id.EventID(eventID)
		event.Action = audit.Action(action)
		if reportID != nil {
			event.ReportID = id.ReportID(*reportID)
		}
		if subjectID != nil {
			event.SubjectID = id.SubjectID(*subjectID)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

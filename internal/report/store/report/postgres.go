package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
	txcontext "labfhir/pkg/platform/tx"
)

// PostgresStore persists reports in PostgreSQL. Statements run against the
// transaction carried in context when one is present, so the dedup gate's
// find-then-insert stays atomic with the rest of a submission.
//
// A partial unique index on (content_hash) WHERE duplicate_of IS NULL backs
// the canonical-per-hash invariant at the storage layer; concurrent inserts
// that lose the race surface as sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed report store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const reportColumns = `id, subject_id, original_filename, mime_type, content_hash, storage_key, status, error_code, error_message, duplicate_of, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, report *models.Report) error {
	const query = `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		report.ID.String(),
		report.SubjectID.String(),
		report.OriginalFilename,
		report.MimeType,
		report.ContentHash,
		report.StorageKey,
		string(report.Status),
		report.ErrorCode,
		report.ErrorMessage,
		duplicateOfValue(report),
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, reportID.String())
	return scanReport(row)
}

func (s *PostgresStore) FindCanonicalByHash(ctx context.Context, contentHash string) (*models.Report, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE content_hash = $1 AND duplicate_of IS NULL`, contentHash)
	return scanReport(row)
}

func (s *PostgresStore) Update(ctx context.Context, report *models.Report) error {
	const query = `
		UPDATE reports
		SET storage_key = $2, status = $3, error_code = $4, error_message = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		report.ID.String(),
		report.StorageKey,
		string(report.Status),
		report.ErrorCode,
		report.ErrorMessage,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.Report, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE subject_id = $1 ORDER BY created_at, id`, subjectID.String())
	if err != nil {
		return nil, fmt.Errorf("list reports by subject: %w", err)
	}
	return collectReports(rows)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Report, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list reports by status: %w", err)
	}
	return collectReports(rows)
}

func collectReports(rows *sql.Rows) ([]*models.Report, error) {
	defer rows.Close()

	var out []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func duplicateOfValue(report *models.Report) any {
	if report.DuplicateOf == nil {
		return nil
	}
	return report.DuplicateOf.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		report       models.Report
		rawID        string
		rawSubjectID string
		rawStatus    string
		duplicateOf  sql.NullString
	)
	err := row.Scan(
		&rawID,
		&rawSubjectID,
		&report.OriginalFilename,
		&report.MimeType,
		&report.ContentHash,
		&report.StorageKey,
		&rawStatus,
		&report.ErrorCode,
		&report.ErrorMessage,
		&duplicateOf,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}

	reportID, err := id.ParseReportID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored report id invalid: %w", err)
	}
	subjectID, err := id.ParseSubjectID(rawSubjectID)
	if err != nil {
		return nil, fmt.Errorf("stored subject id invalid: %w", err)
	}
	report.ID = reportID
	report.SubjectID = subjectID
	report.Status = models.Status(rawStatus)

	if duplicateOf.Valid {
		canonical, err := id.ParseReportID(duplicateOf.String)
		if err != nil {
			return nil, fmt.Errorf("stored duplicate_of invalid: %w", err)
		}
		report.DuplicateOf = &canonical
	}
	return &report, nil
}

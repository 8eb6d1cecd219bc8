package subject

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"labfhir/internal/subject/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
	txcontext "labfhir/pkg/platform/tx"
)

// PostgresStore persists subjects in PostgreSQL. Statements run against the
// transaction carried in context when one is present, so subject writes can
// participate in pipeline transactions.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed subject store.
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

func (s *PostgresStore) Create(ctx context.Context, subject *models.Subject) error {
	const query = `
		INSERT INTO subjects (id, external_subject_id, display_name, subject_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		subject.ID.String(),
		subject.ExternalSubjectID,
		subject.DisplayName,
		string(subject.SubjectType),
		subject.CreatedAt,
		subject.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

const subjectColumns = `id, external_subject_id, display_name, subject_type, created_at, updated_at`

func (s *PostgresStore) Get(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, subjectID.String())
	return scanSubject(row)
}

func (s *PostgresStore) GetByExternalID(ctx context.Context, externalID string) (*models.Subject, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE external_subject_id = $1`, externalID)
	return scanSubject(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Subject, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+subjectColumns+` FROM subjects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var out []*models.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, subject)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*models.Subject, error) {
	var (
		subject   models.Subject
		rawID     string
		rawType   string
		scanError error
	)
	scanError = row.Scan(&rawID, &subject.ExternalSubjectID, &subject.DisplayName, &rawType, &subject.CreatedAt, &subject.UpdatedAt)
	if scanError != nil {
		if errors.Is(scanError, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan subject: %w", scanError)
	}

	subjectID, err := id.ParseSubjectID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored subject id invalid: %w", err)
	}
	subject.ID = subjectID
	subject.SubjectType = models.SubjectType(rawType)
	return &subject, nil
}

package version

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"labfhir/internal/labdata"
	"labfhir/internal/ledger/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
	txcontext "labfhir/pkg/platform/tx"
)

// PostgresStore persists the ledger in PostgreSQL. The payload snapshot is
// stored as JSONB, validation errors as a TEXT[] column. Statements run
// against the transaction carried in context when one is present, so ledger
// appends stay atomic with the report state write.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
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

const versionColumns = `id, report_id, version_number, kind, schema_version, payload, validation_status, validation_errors, created_by, created_at`

func (s *PostgresStore) CreateVersion(ctx context.Context, version *models.Version) error {
	payloadBytes, err := json.Marshal(version.Payload)
	if err != nil {
		return fmt.Errorf("marshal version payload: %w", err)
	}

	// TEXT[] column is NOT NULL; a nil slice would render as SQL NULL.
	validationErrors := version.ValidationErrors
	if validationErrors == nil {
		validationErrors = []string{}
	}

	const query = `
		INSERT INTO versions (` + versionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.q(ctx).ExecContext(ctx, query,
		version.ID.String(),
		version.ReportID.String(),
		version.Number,
		string(version.Kind),
		version.SchemaVersion.String(),
		payloadBytes,
		string(version.ValidationStatus),
		pq.Array(validationErrors),
		version.CreatedBy,
		version.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetVersion(ctx context.Context, versionID id.VersionID) (*models.Version, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE id = $1`, versionID.String())
	return scanVersion(row)
}

func (s *PostgresStore) ListVersions(ctx context.Context, reportID id.ReportID) ([]*models.Version, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE report_id = $1 ORDER BY version_number`, reportID.String())
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []*models.Version
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, version)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LatestValid(ctx context.Context, reportID id.ReportID) (*models.Version, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM versions
		 WHERE report_id = $1 AND validation_status = 'valid'
		 ORDER BY version_number DESC LIMIT 1`, reportID.String())
	return scanVersion(row)
}

func (s *PostgresStore) CountVersions(ctx context.Context, reportID id.ReportID) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM versions WHERE report_id = $1`, reportID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) AppendEdits(ctx context.Context, entries []models.EditHistoryEntry) error {
	const query = `
		INSERT INTO edit_history (version_id, field_path, old_value, new_value, edited_by, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, entry := range entries {
		_, err := s.q(ctx).ExecContext(ctx, query,
			entry.VersionID.String(),
			entry.FieldPath,
			entry.OldValue,
			entry.NewValue,
			entry.EditedBy,
			entry.EditedAt,
		)
		if err != nil {
			return fmt.Errorf("insert edit history entry: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ListEdits(ctx context.Context, versionID id.VersionID) ([]models.EditHistoryEntry, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT version_id, field_path, old_value, new_value, edited_by, edited_at
		 FROM edit_history WHERE version_id = $1 ORDER BY id`, versionID.String())
	if err != nil {
		return nil, fmt.Errorf("list edit history: %w", err)
	}
	defer rows.Close()

	var out []models.EditHistoryEntry
	for rows.Next() {
		var (
			entry        models.EditHistoryEntry
			rawVersionID string
		)
		if err := rows.Scan(&rawVersionID, &entry.FieldPath, &entry.OldValue, &entry.NewValue, &entry.EditedBy, &entry.EditedAt); err != nil {
			return nil, fmt.Errorf("scan edit history entry: %w", err)
		}
		parsed, err := id.ParseVersionID(rawVersionID)
		if err != nil {
			return nil, fmt.Errorf("stored version id invalid: %w", err)
		}
		entry.VersionID = parsed
		out = append(out, entry)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*models.Version, error) {
	var (
		version      models.Version
		rawID        string
		rawReportID  string
		rawKind      string
		rawSchema    string
		rawStatus    string
		payloadBytes []byte
		errs         pq.StringArray
	)
	err := row.Scan(
		&rawID,
		&rawReportID,
		&version.Number,
		&rawKind,
		&rawSchema,
		&payloadBytes,
		&rawStatus,
		&errs,
		&version.CreatedBy,
		&version.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan version: %w", err)
	}

	versionID, err := id.ParseVersionID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored version id invalid: %w", err)
	}
	reportID, err := id.ParseReportID(rawReportID)
	if err != nil {
		return nil, fmt.Errorf("stored report id invalid: %w", err)
	}

	var payload labdata.Payload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal version payload: %w", err)
	}

	version.ID = versionID
	version.ReportID = reportID
	version.Kind = models.VersionKind(rawKind)
	version.SchemaVersion = id.SchemaVersion(rawSchema)
	version.Payload = payload
	version.ValidationStatus = models.ValidationStatus(rawStatus)
	version.ValidationErrors = []string(errs)
	return &version, nil
}

package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"labfhir/internal/bundle/models"
	id "labfhir/pkg/domain"
	"labfhir/pkg/platform/sentinel"
	txcontext "labfhir/pkg/platform/tx"
)

// PostgresStore persists artifacts in PostgreSQL. The canonical document is
// stored as BYTEA so reads return the exact bytes the content hash covers.
// A BIGSERIAL seq column fixes insertion order so "latest" stays well-defined
// when two generations share a timestamp.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed artifact store.
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

const artifactColumns = `id, report_id, version_id, document, content_hash, generation_mode, generated_at`

func (s *PostgresStore) Create(ctx context.Context, artifact *models.BundleArtifact) error {
	const query = `
		INSERT INTO bundle_artifacts (` + artifactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		artifact.ID.String(),
		artifact.ReportID.String(),
		artifact.VersionID.String(),
		[]byte(artifact.Document),
		artifact.ContentHash,
		string(artifact.Mode),
		artifact.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bundle artifact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, artifactID id.ArtifactID) (*models.BundleArtifact, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+artifactColumns+` FROM bundle_artifacts WHERE id = $1`, artifactID.String())
	return scanArtifact(row)
}

func (s *PostgresStore) LatestByReport(ctx context.Context, reportID id.ReportID) (*models.BundleArtifact, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+artifactColumns+` FROM bundle_artifacts WHERE report_id = $1 ORDER BY seq DESC LIMIT 1`,
		reportID.String())
	return scanArtifact(row)
}

func (s *PostgresStore) ListByReport(ctx context.Context, reportID id.ReportID) ([]*models.BundleArtifact, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+artifactColumns+` FROM bundle_artifacts WHERE report_id = $1 ORDER BY seq`,
		reportID.String())
	if err != nil {
		return nil, fmt.Errorf("list bundle artifacts: %w", err)
	}
	defer rows.Close()

	var out []*models.BundleArtifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, artifact)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*models.BundleArtifact, error) {
	var (
		artifact     models.BundleArtifact
		rawID        string
		rawReportID  string
		rawVersionID string
		rawMode      string
		document     []byte
	)
	err := row.Scan(
		&rawID,
		&rawReportID,
		&rawVersionID,
		&document,
		&artifact.ContentHash,
		&rawMode,
		&artifact.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan bundle artifact: %w", err)
	}

	artifactID, err := id.ParseArtifactID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored artifact id invalid: %w", err)
	}
	reportID, err := id.ParseReportID(rawReportID)
	if err != nil {
		return nil, fmt.Errorf("stored report id invalid: %w", err)
	}
	versionID, err := id.ParseVersionID(rawVersionID)
	if err != nil {
		return nil, fmt.Errorf("stored version id invalid: %w", err)
	}

	artifact.ID = artifactID
	artifact.ReportID = reportID
	artifact.VersionID = versionID
	artifact.Document = document
	artifact.Mode = models.GenerationMode(rawMode)
	return &artifact, nil
}

// Package version persists the append-only version ledger and its edit
// history. Two implementations share one interface: an in-memory store for
// unit tests and single-process use, and a PostgreSQL store for production.
package version

import (
	"context"

	"labfhir/internal/ledger/models"
	id "labfhir/pkg/domain"
)

// Store is the persistence boundary for versions and edit history.
//
// CreateVersion returns sentinel.ErrConflict when (report_id, number) is
// already taken; the pipeline's per-report lock makes that unreachable in
// normal operation, the store unique constraint is the backstop.
type Store interface {
	CreateVersion(ctx context.Context, version *models.Version) error
	GetVersion(ctx context.Context, versionID id.VersionID) (*models.Version, error)
	ListVersions(ctx context.Context, reportID id.ReportID) ([]*models.Version, error)
	LatestValid(ctx context.Context, reportID id.ReportID) (*models.Version, error)
	CountVersions(ctx context.Context, reportID id.ReportID) (int, error)
	AppendEdits(ctx context.Context, entries []models.EditHistoryEntry) error
	ListEdits(ctx context.Context, versionID id.VersionID) ([]models.EditHistoryEntry, error)
}

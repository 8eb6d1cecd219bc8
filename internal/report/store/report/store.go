// Package report persists Report aggregates. Two implementations share one
// interface: an in-memory store for unit tests and single-process use, and a
// PostgreSQL store for production. Both return sentinel errors for
// infrastructure facts; services translate those into domain errors.
package report

import (
	"context"

	"labfhir/internal/report/models"
	id "labfhir/pkg/domain"
)

// Store is the persistence boundary for reports.
//
// FindCanonicalByHash implements the dedup gate's lookup: it matches only
// canonical rows (duplicate_of unset), so every same-hash upload resolves to
// the one canonical report regardless of how many duplicate records exist.
type Store interface {
	Create(ctx context.Context, report *models.Report) error
	Get(ctx context.Context, reportID id.ReportID) (*models.Report, error)
	FindCanonicalByHash(ctx context.Context, contentHash string) (*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]*models.Report, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Report, error)
}

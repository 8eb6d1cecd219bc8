// Package artifact persists generated bundle artifacts. Artifacts are
// append-only: regeneration adds a row, it never replaces one.
package artifact

import (
	"context"

	"labfhir/internal/bundle/models"
	id "labfhir/pkg/domain"
)

// Store is the persistence boundary for bundle artifacts.
type Store interface {
	Create(ctx context.Context, artifact *models.BundleArtifact) error
	Get(ctx context.Context, artifactID id.ArtifactID) (*models.BundleArtifact, error)
	// LatestByReport returns the most recently generated artifact for a
	// report, sentinel.ErrNotFound when none exists.
	LatestByReport(ctx context.Context, reportID id.ReportID) (*models.BundleArtifact, error)
	ListByReport(ctx context.Context, reportID id.ReportID) ([]*models.BundleArtifact, error)
}

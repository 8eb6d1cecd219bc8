// Package subject persists subject profiles. Memory and PostgreSQL
// implementations share the interface; both signal infrastructure facts with
// sentinel errors that services translate into coded domain errors.
package subject

import (
	"context"

	"labfhir/internal/subject/models"
	id "labfhir/pkg/domain"
)

// Store is the persistence boundary for subjects. ExternalSubjectID is
// unique: Create returns sentinel.ErrAlreadyUsed when it is taken.
type Store interface {
	Create(ctx context.Context, subject *models.Subject) error
	Get(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Subject, error)
	List(ctx context.Context) ([]*models.Subject, error)
}

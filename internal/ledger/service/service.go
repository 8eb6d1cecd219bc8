// Package service implements the version ledger: append-only structured
// versions of a report plus the field-level edit history between them.
//
// The ledger never renumbers, updates, or deletes. Callers decide the
// validation outcome before appending; the ledger freezes it. Serializing
// concurrent appends for one report is the pipeline's job (per-report
// locking); the store's unique constraint on (report_id, version_number) is
// the backstop that turns a lost race into a conflict instead of a gap.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"labfhir/internal/labdata"
	"labfhir/internal/ledger/models"
	versionstore "labfhir/internal/ledger/store/version"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/platform/sentinel"
	"labfhir/pkg/requestcontext"
)

// Store is the persistence dependency; see store/version for implementations.
type Store = versionstore.Store

// Service appends and reads ledger versions and edit history.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs the ledger service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("version store is required")
	}
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// AppendInput carries one ledger append. ValidationErrors must be non-empty
// exactly when ValidationStatus is invalid.
type AppendInput struct {
	ReportID         id.ReportID
	Payload          labdata.Payload
	Kind             models.VersionKind
	ValidationStatus models.ValidationStatus
	ValidationErrors []string
	CreatedBy        string
}

// Append writes the next version for a report: number = 1 + current count,
// payload persisted verbatim. The version row is immutable from here on.
func (s *Service) Append(ctx context.Context, in AppendInput) (*models.Version, error) {
	count, err := s.store.CountVersions(ctx, in.ReportID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count versions")
	}

	version, err := models.NewVersion(id.NewVersionID(), in.ReportID, count+1, in.Kind,
		in.Payload, in.ValidationStatus, in.ValidationErrors, in.CreatedBy, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateVersion(ctx, version); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("version %d already exists for report %s", version.Number, in.ReportID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append version")
	}

	s.logger.InfoContext(ctx, "version appended",
		"report_id", in.ReportID.String(),
		"version_id", version.ID.String(),
		"version_number", version.Number,
		"kind", string(version.Kind),
		"validation_status", string(version.ValidationStatus),
	)
	return version, nil
}

// LatestValid returns the highest-numbered version that passed validation.
func (s *Service) LatestValid(ctx context.Context, reportID id.ReportID) (*models.Version, error) {
	version, err := s.store.LatestValid(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report has no valid version: "+reportID.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get latest valid version")
	}
	return version, nil
}

// List returns all versions of a report, ascending by number.
func (s *Service) List(ctx context.Context, reportID id.ReportID) ([]*models.Version, error) {
	versions, err := s.store.ListVersions(ctx, reportID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list versions")
	}
	return versions, nil
}

// Get resolves one version by ID.
func (s *Service) Get(ctx context.Context, versionID id.VersionID) (*models.Version, error) {
	version, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "version not found: "+versionID.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get version")
	}
	return version, nil
}

// RecordEdits attaches field-level changes to a corrected version. Changes
// come from labdata.Diff between the previous payload and the corrected one;
// an empty change list is a no-op.
func (s *Service) RecordEdits(ctx context.Context, versionID id.VersionID, changes []labdata.FieldChange, editedBy string) ([]models.EditHistoryEntry, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	if _, err := s.Get(ctx, versionID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	entries := make([]models.EditHistoryEntry, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, models.EditHistoryEntry{
			VersionID: versionID,
			FieldPath: change.Path,
			OldValue:  change.Old,
			NewValue:  change.New,
			EditedBy:  editedBy,
			EditedAt:  now,
		})
	}

	if err := s.store.AppendEdits(ctx, entries); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record edit history")
	}

	s.logger.InfoContext(ctx, "edit history recorded",
		"version_id", versionID.String(),
		"changes", len(entries),
	)
	return entries, nil
}

// ListEdits returns the edit history for a version in recorded order.
func (s *Service) ListEdits(ctx context.Context, versionID id.VersionID) ([]models.EditHistoryEntry, error) {
	entries, err := s.store.ListEdits(ctx, versionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list edit history")
	}
	return entries, nil
}

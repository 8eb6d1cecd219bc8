// Package service implements subject-profile registration and lookup.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"labfhir/internal/subject/models"
	subjectstore "labfhir/internal/subject/store/subject"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/platform/sentinel"
	"labfhir/pkg/requestcontext"
)

// Store is the persistence dependency; see store/subject for implementations.
type Store = subjectstore.Store

// Service registers and resolves subject profiles.
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

// New constructs the subject service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("subject store is required")
	}
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateInput carries the fields needed to register a subject.
type CreateInput struct {
	ExternalSubjectID string
	DisplayName       string
	SubjectType       models.SubjectType
}

// Create registers a new subject profile. The external subject identifier is
// unique: a second registration with the same value is a conflict, never an
// upsert, because derived observation identities key on it.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Subject, error) {
	subject, err := models.NewSubject(id.NewSubjectID(), in.ExternalSubjectID, in.DisplayName, in.SubjectType, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, subject); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) || errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("subject with external_subject_id %q already exists", subject.ExternalSubjectID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create subject")
	}

	s.logger.InfoContext(ctx, "subject created",
		"subject_id", subject.ID.String(),
		"subject_type", string(subject.SubjectType),
	)
	return subject, nil
}

// Get resolves a subject by ID.
func (s *Service) Get(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	subject, err := s.store.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found: "+subjectID.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get subject")
	}
	return subject, nil
}

// GetByExternalID resolves a subject by its lab-assigned identifier.
func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*models.Subject, error) {
	subject, err := s.store.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found: "+externalID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get subject")
	}
	return subject, nil
}

// List returns all subjects in creation order.
func (s *Service) List(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subjects")
	}
	return subjects, nil
}

package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"labfhir/internal/platform/middleware"
	subjectModels "labfhir/internal/subject/models"
	subjectsvc "labfhir/internal/subject/service"
	"labfhir/internal/transport/http/shared"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// createSubjectRequest is the POST /subjects body.
type createSubjectRequest struct {
	ExternalSubjectID string `json:"external_subject_id"`
	DisplayName       string `json:"display_name"`
	SubjectType       string `json:"subject_type"`
}

// handleCreateSubject registers a subject profile. The external subject
// identifier is unique; a second registration with the same value is a 409.
func (h *Handler) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create subject request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	subjectType, err := subjectModels.ParseSubjectType(req.SubjectType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	subject, err := h.subjects.Create(ctx, subjectsvc.CreateInput{
		ExternalSubjectID: req.ExternalSubjectID,
		DisplayName:       req.DisplayName,
		SubjectType:       subjectType,
	})
	if err != nil {
		h.logError(ctx, "failed to create subject", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, subject)
}

// handleGetSubject returns one subject profile.
func (h *Handler) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	subject, err := h.subjects.Get(ctx, subjectID)
	if err != nil {
		h.logError(ctx, "failed to get subject", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, subject)
}

// handleListSubjects returns all subject profiles.
func (h *Handler) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjects, err := h.subjects.List(ctx)
	if err != nil {
		h.logError(ctx, "failed to list subjects", err)
		shared.WriteError(w, err)
		return
	}
	if subjects == nil {
		subjects = []*subjectModels.Subject{}
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

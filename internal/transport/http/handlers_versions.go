package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"labfhir/internal/labdata"
	ledgerModels "labfhir/internal/ledger/models"
	"labfhir/internal/platform/middleware"
	"labfhir/internal/transport/http/shared"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// correctionRequest is the POST /reports/{reportID}/corrections body. Author
// is optional when the caller is authenticated; the actor on the context is
// used then.
type correctionRequest struct {
	Payload labdata.Payload `json:"payload"`
	Author  string          `json:"author,omitempty"`
}

// handleCorrectReport appends a reviewer-corrected version. The response is
// the new ledger entry; the field-level diff is queryable under
// /versions/{versionID}/edits.
func (h *Handler) handleCorrectReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid correction request",
			"request_id", middleware.GetRequestID(ctx),
			"report_id", reportID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	version, err := h.pipeline.Correct(ctx, reportID, req.Payload, req.Author)
	if err != nil {
		h.logError(ctx, "failed to append correction", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, version)
}

// handleListVersions returns a report's full ledger, ascending by number.
// The report is resolved first so an unknown ID is a 404, not an empty list.
func (h *Handler) handleListVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if _, err := h.pipeline.GetReport(ctx, reportID); err != nil {
		h.logError(ctx, "failed to list versions", err)
		shared.WriteError(w, err)
		return
	}

	versions, err := h.ledger.List(ctx, reportID)
	if err != nil {
		h.logError(ctx, "failed to list versions", err)
		shared.WriteError(w, err)
		return
	}
	if versions == nil {
		versions = []*ledgerModels.Version{}
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// handleLatestValidVersion returns the highest-numbered version that passed
// validation, the one bundle assembly keys on.
func (h *Handler) handleLatestValidVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if _, err := h.pipeline.GetReport(ctx, reportID); err != nil {
		h.logError(ctx, "failed to get latest valid version", err)
		shared.WriteError(w, err)
		return
	}

	version, err := h.ledger.LatestValid(ctx, reportID)
	if err != nil {
		h.logError(ctx, "failed to get latest valid version", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, version)
}

// handleListEdits returns the field-level changes recorded for a corrected
// version, in recorded order.
func (h *Handler) handleListEdits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	versionID, err := id.ParseVersionID(chi.URLParam(r, "versionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if _, err := h.ledger.Get(ctx, versionID); err != nil {
		h.logError(ctx, "failed to list edits", err)
		shared.WriteError(w, err)
		return
	}

	edits, err := h.ledger.ListEdits(ctx, versionID)
	if err != nil {
		h.logError(ctx, "failed to list edits", err)
		shared.WriteError(w, err)
		return
	}
	if edits == nil {
		edits = []ledgerModels.EditHistoryEntry{}
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"edits": edits})
}

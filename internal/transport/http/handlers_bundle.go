package httptransport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	bundleModels "labfhir/internal/bundle/models"
	"labfhir/internal/platform/middleware"
	"labfhir/internal/transport/http/shared"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// generateBundleRequest is the POST /reports/{reportID}/bundle body. Mode
// defaults to initial when omitted.
type generateBundleRequest struct {
	Mode string `json:"mode,omitempty"`
}

// handleGenerateBundle assembles and stores a bundle artifact from the
// report's latest valid version. Regenerating from unchanged data yields a
// new artifact with the identical content hash.
func (h *Handler) handleGenerateBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req generateBundleRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.WarnContext(ctx, "invalid generate bundle request",
				"request_id", middleware.GetRequestID(ctx),
				"report_id", reportID.String(),
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}
	mode, err := bundleModels.ParseGenerationMode(req.Mode)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	artifact, err := h.pipeline.GenerateBundle(ctx, reportID, mode)
	if err != nil {
		h.logError(ctx, "failed to generate bundle", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, artifact)
}

// handleGetBundle serves the latest artifact's FHIR document for download.
// The ETag is the artifact's content hash, so clients can dedupe downloads
// across regenerations of unchanged data.
func (h *Handler) handleGetBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	artifact, err := h.pipeline.LatestArtifact(ctx, reportID)
	if err != nil {
		h.logError(ctx, "failed to load bundle", err)
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/fhir+json")
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Document)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "bundle-"+reportID.String()+".json"))
	w.Header().Set("ETag", strconv.Quote(artifact.ContentHash))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Document)
}

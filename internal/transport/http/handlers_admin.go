package httptransport

import (
	"net/http"

	"labfhir/internal/transport/http/shared"
)

// handleVerifyArtifacts sweeps every completed report, re-assembles its
// latest valid version, and reports hash mismatches. Read-only; the response
// is the sweep summary.
func (h *Handler) handleVerifyArtifacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.pipeline.VerifyArtifacts(ctx)
	if err != nil {
		h.logError(ctx, "artifact verification sweep failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}

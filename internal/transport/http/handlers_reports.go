package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"labfhir/internal/audit"
	"labfhir/internal/labdata"
	"labfhir/internal/pipeline"
	"labfhir/internal/platform/middleware"
	reportModel "labfhir/internal/report/models"
	"labfhir/internal/transport/http/shared"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// reportResponse is the report envelope: the stored record plus the derived
// lifecycle flags clients render queue views from.
type reportResponse struct {
	*reportModel.Report
	StatusMetadata     reportModel.StatusMetadata `json:"status_metadata"`
	AllowedTransitions []reportModel.Status       `json:"allowed_transitions"`
}

func newReportResponse(report *reportModel.Report) reportResponse {
	return reportResponse{
		Report:             report,
		StatusMetadata:     reportModel.MetadataFor(report.Status),
		AllowedTransitions: reportModel.AllowedTransitions(report.Status),
	}
}

func newReportListResponse(reports []*reportModel.Report) []reportResponse {
	out := make([]reportResponse, len(reports))
	for i, r := range reports {
		out[i] = newReportResponse(r)
	}
	return out
}

// handleSubmitReport accepts one multipart upload: a "file" part plus a
// "subject_id" form field. A content-hash match against an existing canonical
// report is a 409 carrying both report IDs and the hash.
func (h *Handler) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.WarnContext(ctx, "invalid report upload",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart form with a file part"))
		return
	}

	subjectID, err := id.ParseSubjectID(r.FormValue("subject_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file part is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read uploaded file"))
		return
	}

	report, err := h.pipeline.Submit(ctx, pipeline.SubmitInput{
		SubjectID: subjectID,
		Filename:  header.Filename,
		MimeType:  header.Header.Get("Content-Type"),
		Bytes:     data,
	})
	if err != nil {
		var dup *pipeline.DuplicateError
		if errors.As(err, &dup) {
			shared.WriteErrorDetails(w, http.StatusConflict, "duplicate_upload",
				"This file has already been uploaded", map[string]any{
					"canonical_report_id": dup.CanonicalReportID.String(),
					"duplicate_report_id": dup.DuplicateReportID.String(),
					"file_hash":           dup.ContentHash,
				})
			return
		}
		h.logError(ctx, "failed to submit report", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, newReportResponse(report))
}

// handleGetReport returns one report with its lifecycle flags.
func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, err := h.pipeline.GetReport(ctx, reportID)
	if err != nil {
		h.logError(ctx, "failed to get report", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, newReportResponse(report))
}

// handleListReports returns a subject's reports, newest first.
func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subjectID, err := id.ParseSubjectID(r.URL.Query().Get("subject_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reports, err := h.pipeline.ListReportsBySubject(ctx, subjectID)
	if err != nil {
		h.logError(ctx, "failed to list reports", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"reports": newReportListResponse(reports)})
}

// handleDownloadDocument streams the original uploaded bytes. Duplicates
// resolve to the canonical upload's document through the shared content hash.
func (h *Handler) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, data, err := h.pipeline.GetDocument(ctx, reportID)
	if err != nil {
		h.logError(ctx, "failed to load document", err)
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", report.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.OriginalFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// auditEventResponse is the wire shape of one audit trail entry.
type auditEventResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	ReportID  string    `json:"report_id"`
	SubjectID string    `json:"subject_id,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Client    string    `json:"client,omitempty"`
}

func newAuditEventResponse(e audit.Event) auditEventResponse {
	out := auditEventResponse{
		ID:        e.ID.String(),
		Timestamp: e.Timestamp,
		Action:    string(e.Action),
		ReportID:  e.ReportID.String(),
		Actor:     e.Actor,
		Outcome:   e.Outcome,
		Detail:    e.Detail,
		RequestID: e.RequestID,
		ClientIP:  e.ClientIP,
		Client:    e.Client,
	}
	if !e.SubjectID.IsNil() {
		out.SubjectID = e.SubjectID.String()
	}
	return out
}

// handleListEvents returns a report's audit trail, oldest first.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	events, err := h.pipeline.ListAuditTrail(ctx, reportID)
	if err != nil {
		h.logError(ctx, "failed to list audit trail", err)
		shared.WriteError(w, err)
		return
	}

	out := make([]auditEventResponse, len(events))
	for i, e := range events {
		out[i] = newAuditEventResponse(e)
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}

// handleAdvanceReport accepts the extraction collaborator's structured
// payload and advances the report through parsing. An invalid payload is
// still recorded on the ledger, then the report fails and the response is
// the 422 validation envelope.
func (h *Handler) handleAdvanceReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var payload labdata.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WarnContext(ctx, "invalid advance request",
			"request_id", middleware.GetRequestID(ctx),
			"report_id", reportID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	report, err := h.pipeline.Advance(ctx, reportID, payload)
	if err != nil {
		h.logError(ctx, "failed to advance report", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, newReportResponse(report))
}

// retryRequest is the POST /reports/{reportID}/retry body. Target names the
// re-entry state explicitly; the system never infers it from error codes.
type retryRequest struct {
	Target string `json:"target"`
}

// handleRetryReport re-enters a failed report at the requested state.
func (h *Handler) handleRetryReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req retryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	target, err := reportModel.ParseStatus(req.Target)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, err := h.pipeline.Retry(ctx, reportID, target)
	if err != nil {
		h.logError(ctx, "failed to retry report", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, newReportResponse(report))
}

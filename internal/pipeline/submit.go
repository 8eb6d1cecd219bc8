package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"labfhir/internal/audit"
	"labfhir/internal/determinism"
	reportModel "labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/platform/sentinel"
	"labfhir/pkg/requestcontext"
)

// defaultMimeType is recorded when the uploader did not declare one.
const defaultMimeType = "application/octet-stream"

// SubmitInput carries one uploaded document.
type SubmitInput struct {
	SubjectID id.SubjectID
	Filename  string
	MimeType  string
	Bytes     []byte
}

// DuplicateError is returned when the dedup gate matches an existing
// document. It carries everything the caller needs to point at the prior
// upload; the duplicate audit record has already been persisted when this
// error is returned.
type DuplicateError struct {
	CanonicalReportID id.ReportID
	DuplicateReportID id.ReportID
	ContentHash       string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("document already uploaded as report %s", e.CanonicalReportID)
}

// Submit runs the dedup gate and registers the upload.
//
// The document's SHA-256 is compared against canonical reports only, across
// all subjects: the same bytes submitted for a different subject still hit
// the gate. A miss stores the bytes, creates the report in uploaded, and
// returns it. A hit creates a terminal duplicate record pointing at the
// canonical report and returns a DuplicateError wrapped with the conflict
// code; the byte-level content is not stored twice.
//
// Submission itself takes no report lock: until the report row exists there
// is nothing to lock, and the store's canonical-hash uniqueness closes the
// window between concurrent same-hash submissions.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*reportModel.Report, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.Submit",
		trace.WithAttributes(attribute.String("subject_id", in.SubjectID.String())))
	defer span.End()

	if len(in.Bytes) == 0 {
		s.metrics.IncReportSubmitted("rejected")
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document bytes are required")
	}
	if in.Filename == "" {
		s.metrics.IncReportSubmitted("rejected")
		return nil, dErrors.New(dErrors.CodeInvalidInput, "filename is required")
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	if _, err := s.subjects.Get(ctx, in.SubjectID); err != nil {
		s.metrics.IncReportSubmitted("rejected")
		return nil, err
	}

	hash := determinism.ContentHash(in.Bytes)
	span.SetAttributes(attribute.String("content_hash", hash))

	canonical, err := s.reports.FindCanonicalByHash(ctx, hash)
	switch {
	case err == nil:
		return nil, s.recordDuplicate(ctx, in, mimeType, hash, canonical)
	case errors.Is(err, sentinel.ErrNotFound):
		// First sighting of these bytes, fall through to the accept path.
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "dedup lookup failed")
	}

	if err := s.docs.Put(ctx, hash, in.Bytes); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}

	now := requestcontext.Now(ctx)
	report, err := reportModel.NewReport(id.NewReportID(), in.SubjectID, in.Filename, mimeType, hash, now)
	if err != nil {
		return nil, err
	}
	report.StorageKey = hash

	if err := s.reports.Create(ctx, report); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a same-hash race; the winner's row is now canonical.
			canonical, lookupErr := s.reports.FindCanonicalByHash(ctx, hash)
			if lookupErr != nil {
				return nil, dErrors.Wrap(lookupErr, dErrors.CodeInternal, "dedup lookup failed after conflict")
			}
			return nil, s.recordDuplicate(ctx, in, mimeType, hash, canonical)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create report")
	}

	span.SetAttributes(attribute.String("report_id", report.ID.String()))
	s.metrics.IncReportSubmitted("accepted")
	s.logger.InfoContext(ctx, "report submitted",
		"report_id", report.ID.String(),
		"subject_id", in.SubjectID.String(),
		"filename", in.Filename,
	)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionReportSubmitted,
		ReportID:  report.ID,
		SubjectID: in.SubjectID,
		Outcome:   string(reportModel.StatusUploaded),
		Detail:    in.Filename,
	})
	return report, nil
}

// recordDuplicate persists the terminal duplicate record and builds the
// conflict error. Persistence is not optional: the duplicate row is the audit
// trail for the rejected upload.
func (s *Service) recordDuplicate(ctx context.Context, in SubmitInput, mimeType, hash string, canonical *reportModel.Report) error {
	now := requestcontext.Now(ctx)
	dup, err := reportModel.NewDuplicateReport(id.NewReportID(), in.SubjectID, in.Filename, mimeType, hash, canonical.ID, now)
	if err != nil {
		return err
	}
	if err := s.reports.Create(ctx, dup); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record duplicate upload")
	}

	s.metrics.IncReportSubmitted("duplicate")
	s.logger.InfoContext(ctx, "duplicate upload detected",
		"report_id", dup.ID.String(),
		"canonical_report_id", canonical.ID.String(),
		"content_hash", hash,
	)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionDuplicateDetected,
		ReportID:  dup.ID,
		SubjectID: in.SubjectID,
		Outcome:   string(reportModel.StatusDuplicate),
		Detail:    "canonical report " + canonical.ID.String(),
	})

	return dErrors.Wrap(&DuplicateError{
		CanonicalReportID: canonical.ID,
		DuplicateReportID: dup.ID,
		ContentHash:       hash,
	}, dErrors.CodeConflict, "duplicate upload")
}

package models

import (
	"regexp"
	"time"

	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// Error reasons persisted on failed reports for operator visibility. These
// are data, not error plumbing: they survive on the report row after the
// returning error is long gone.
const (
	ReasonProcessingError  = "processing_error"
	ReasonBundleGeneration = "bundle_generation_failed"
	ReasonNoValidVersion   = "no_valid_version"
	ReasonDuplicateUpload  = "duplicate_upload"
	ReasonStateTransition  = "state_transition_error"
)

var hexHashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Report is the aggregate root for one uploaded lab document.
//
// Invariants:
//   - ContentHash is the lowercase hex SHA-256 of the original bytes and is
//     immutable after construction
//   - Status changes only through the transition table (ValidateTransition
//     before every write)
//   - A report with DuplicateOf set is permanently in StatusDuplicate and
//     never owns versions or artifacts
//   - Reports are never physically deleted (audit requirement)
//
// Error fields hold the most recent failure's reason and message; they are
// cleared when a retry re-enters the pipeline.
type Report struct {
	ID               id.ReportID  `json:"id"`
	SubjectID        id.SubjectID `json:"subject_id"`
	OriginalFilename string       `json:"original_filename"`
	MimeType         string       `json:"mime_type"`
	ContentHash      string       `json:"content_hash"`
	StorageKey       string       `json:"storage_key,omitempty"`
	Status           Status       `json:"status"`
	ErrorCode        string       `json:"error_code,omitempty"`
	ErrorMessage     string       `json:"error_message,omitempty"`
	DuplicateOf      *id.ReportID `json:"duplicate_of,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NewReport constructs a canonical report in StatusUploaded.
func NewReport(reportID id.ReportID, subjectID id.SubjectID, filename, mimeType, contentHash string, now time.Time) (*Report, error) {
	if err := validateReportFields(reportID, subjectID, filename, contentHash); err != nil {
		return nil, err
	}
	return &Report{
		ID:               reportID,
		SubjectID:        subjectID,
		OriginalFilename: filename,
		MimeType:         mimeType,
		ContentHash:      contentHash,
		Status:           StatusUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// NewDuplicateReport constructs the audit record for a rejected same-hash
// upload. It is born terminal: StatusDuplicate, pointing at the canonical
// report that matched the hash. It carries no content-dependent side
// effects, so it never gains a version or an artifact.
func NewDuplicateReport(reportID id.ReportID, subjectID id.SubjectID, filename, mimeType, contentHash string, canonical id.ReportID, now time.Time) (*Report, error) {
	if err := validateReportFields(reportID, subjectID, filename, contentHash); err != nil {
		return nil, err
	}
	if canonical.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "duplicate report requires a canonical report id")
	}
	return &Report{
		ID:               reportID,
		SubjectID:        subjectID,
		OriginalFilename: filename,
		MimeType:         mimeType,
		ContentHash:      contentHash,
		Status:           StatusDuplicate,
		ErrorCode:        ReasonDuplicateUpload,
		DuplicateOf:      &canonical,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func validateReportFields(reportID id.ReportID, subjectID id.SubjectID, filename, contentHash string) error {
	if reportID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "report id is required")
	}
	if subjectID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "subject id is required")
	}
	if filename == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "original filename is required")
	}
	if !hexHashPattern.MatchString(contentHash) {
		return dErrors.New(dErrors.CodeInvariantViolation, "content hash must be 64 lowercase hex digits")
	}
	return nil
}

// IsDuplicate reports whether this record points at a canonical report.
func (r *Report) IsDuplicate() bool {
	return r.DuplicateOf != nil
}

// Clone returns a deep copy. In-memory stores hand out clones so callers
// never share mutable state with stored records.
func (r *Report) Clone() *Report {
	out := *r
	if r.DuplicateOf != nil {
		dup := *r.DuplicateOf
		out.DuplicateOf = &dup
	}
	return &out
}

// CanTransitionTo checks the transition table for the requested move.
// Use with ApplyTransition inside Execute callbacks so validation and
// mutation stay separable.
func (r *Report) CanTransitionTo(to Status) error {
	return ValidateTransition(r.Status, to)
}

// ApplyTransition writes the new status and stamps UpdatedAt. Leaving
// StatusFailed clears the retained error fields: the retry starts clean.
// Call CanTransitionTo first; ApplyTransition trusts its caller.
func (r *Report) ApplyTransition(to Status, now time.Time) {
	if r.Status == StatusFailed && to != StatusFailed {
		r.ErrorCode = ""
		r.ErrorMessage = ""
	}
	r.Status = to
	r.UpdatedAt = now
}

// Transition validates and applies in one call.
func (r *Report) Transition(to Status, now time.Time) error {
	if err := r.CanTransitionTo(to); err != nil {
		return err
	}
	r.ApplyTransition(to, now)
	return nil
}

// MarkFailed transitions to StatusFailed, retaining the failure's reason and
// message for operator visibility. Illegal from terminal states.
func (r *Report) MarkFailed(reason, message string, now time.Time) error {
	if err := r.CanTransitionTo(StatusFailed); err != nil {
		return err
	}
	r.Status = StatusFailed
	r.ErrorCode = reason
	r.ErrorMessage = message
	r.UpdatedAt = now
	return nil
}

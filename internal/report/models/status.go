package models

import (
	"fmt"

	dErrors "labfhir/pkg/domain-errors"
)

// Status is a report's lifecycle state. Every stored state change must pass
// ValidateTransition first; the transition table below is the single source
// of truth for legality.
type Status string

const (
	// StatusUploaded: document accepted, content hash recorded, nothing parsed yet.
	StatusUploaded Status = "uploaded"
	// StatusParsing: extraction in progress.
	StatusParsing Status = "parsing"
	// StatusReviewPending: a valid structured version exists and awaits human review.
	StatusReviewPending Status = "review_pending"
	// StatusEditing: a reviewer is producing a corrected version.
	StatusEditing Status = "editing"
	// StatusGeneratingBundle: first bundle assembly in progress.
	StatusGeneratingBundle Status = "generating_bundle"
	// StatusRegeneratingBundle: bundle re-assembly after completion.
	StatusRegeneratingBundle Status = "regenerating_bundle"
	// StatusCompleted: a bundle artifact exists; re-enterable for edits and regeneration.
	StatusCompleted Status = "completed"
	// StatusFailed: a step failed; error code and message are retained. Re-enterable
	// via the explicit retry targets only.
	StatusFailed Status = "failed"
	// StatusDuplicate: content hash matched an existing report. Terminal.
	StatusDuplicate Status = "duplicate"
)

// validTransitions lists every legal (from -> to) move. A state absent from
// a row's targets is illegal from that row, no exceptions: completed and
// failed stay re-enterable, duplicate has no outgoing moves at all.
var validTransitions = map[Status][]Status{
	StatusUploaded:           {StatusParsing, StatusFailed, StatusDuplicate},
	StatusParsing:            {StatusReviewPending, StatusFailed},
	StatusReviewPending:      {StatusEditing, StatusGeneratingBundle, StatusFailed},
	StatusEditing:            {StatusReviewPending, StatusGeneratingBundle, StatusFailed},
	StatusGeneratingBundle:   {StatusCompleted, StatusFailed},
	StatusRegeneratingBundle: {StatusCompleted, StatusFailed},
	StatusCompleted:          {StatusRegeneratingBundle, StatusEditing},
	StatusFailed:             {StatusParsing, StatusGeneratingBundle},
	StatusDuplicate:          {},
}

// CanTransition reports whether from -> to is a legal move. Pure lookup, no
// side effects.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a conflict error naming both states when the
// move is illegal, nil otherwise. It never mutates anything; writing the new
// state is the caller's job, after validation succeeds.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("invalid state transition from %s to %s", from, to))
	}
	return nil
}

// IsTerminal reports whether the status has no outgoing transitions.
// Holds exactly for duplicate: completed and failed remain re-enterable.
func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

// AllowedTransitions returns the legal targets from the given status, in
// table order. The returned slice is a copy.
func AllowedTransitions(from Status) []Status {
	targets := validTransitions[from]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

// RetryTargets are the only legal re-entry points from failed. Callers pick
// one explicitly; the system never infers the retry target from error codes.
func RetryTargets() []Status {
	return AllowedTransitions(StatusFailed)
}

var validStatuses = map[Status]bool{
	StatusUploaded:           true,
	StatusParsing:            true,
	StatusReviewPending:      true,
	StatusEditing:            true,
	StatusGeneratingBundle:   true,
	StatusRegeneratingBundle: true,
	StatusCompleted:          true,
	StatusFailed:             true,
	StatusDuplicate:          true,
}

// ParseStatus validates external input against the known status set.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown report status %q", s))
	}
	return st, nil
}

// Statuses returns every defined status, in lifecycle order. Used by tests
// that enumerate the full transition space and by API introspection.
func Statuses() []Status {
	return []Status{
		StatusUploaded,
		StatusParsing,
		StatusReviewPending,
		StatusEditing,
		StatusGeneratingBundle,
		StatusRegeneratingBundle,
		StatusCompleted,
		StatusFailed,
		StatusDuplicate,
	}
}

// StatusMetadata carries reporting flags for a status, for API consumers
// that render queue views without re-encoding lifecycle knowledge.
type StatusMetadata struct {
	IsProcessing     bool `json:"is_processing"`
	IsUserActionable bool `json:"is_user_actionable"`
	IsSuccess        bool `json:"is_success"`
	IsError          bool `json:"is_error"`
}

// MetadataFor classifies a status for display purposes.
func MetadataFor(s Status) StatusMetadata {
	return StatusMetadata{
		IsProcessing:     s == StatusParsing || s == StatusGeneratingBundle || s == StatusRegeneratingBundle,
		IsUserActionable: s == StatusReviewPending || s == StatusEditing,
		IsSuccess:        s == StatusCompleted,
		IsError:          s == StatusFailed || s == StatusDuplicate,
	}
}

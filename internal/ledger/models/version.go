// Package models defines the version ledger entities: immutable structured
// versions of a report and the field-level edit history between them.
package models

import (
	"time"

	"labfhir/internal/labdata"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// VersionKind distinguishes the first extraction from later corrections.
type VersionKind string

const (
	KindOriginal  VersionKind = "original"
	KindCorrected VersionKind = "corrected"
)

var validKinds = map[VersionKind]bool{
	KindOriginal:  true,
	KindCorrected: true,
}

// ValidationStatus records the validation outcome frozen at append time.
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
)

// Version is one append-only ledger entry: a full structured payload
// snapshot plus the validation outcome it was appended with.
//
// Invariants:
//   - Number starts at 1 per report and increments by one per append
//   - rows are never renumbered, updated, or deleted
//   - ValidationErrors is non-empty exactly when the status is invalid
type Version struct {
	ID               id.VersionID     `json:"id"`
	ReportID         id.ReportID      `json:"report_id"`
	Number           int              `json:"version_number"`
	Kind             VersionKind      `json:"kind"`
	SchemaVersion    id.SchemaVersion `json:"schema_version"`
	Payload          labdata.Payload  `json:"payload"`
	ValidationStatus ValidationStatus `json:"validation_status"`
	ValidationErrors []string         `json:"validation_errors,omitempty"`
	CreatedBy        string           `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NewVersion constructs a validated ledger entry. The payload is stored as
// given; normalization happens before append, never after.
func NewVersion(versionID id.VersionID, reportID id.ReportID, number int, kind VersionKind,
	payload labdata.Payload, status ValidationStatus, validationErrors []string,
	createdBy string, now time.Time) (*Version, error) {

	if versionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "version id is required")
	}
	if reportID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "report id is required")
	}
	if number < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "version number must be >= 1")
	}
	if !validKinds[kind] {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "version kind must be \"original\" or \"corrected\"")
	}
	switch status {
	case ValidationValid:
		if len(validationErrors) > 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "valid version must not carry validation errors")
		}
	case ValidationInvalid:
		if len(validationErrors) == 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid version must carry at least one validation error")
		}
	default:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "validation status must be \"valid\" or \"invalid\"")
	}

	return &Version{
		ID:               versionID,
		ReportID:         reportID,
		Number:           number,
		Kind:             kind,
		SchemaVersion:    payload.SchemaVersion,
		Payload:          payload.Clone(),
		ValidationStatus: status,
		ValidationErrors: append([]string(nil), validationErrors...),
		CreatedBy:        createdBy,
		CreatedAt:        now,
	}, nil
}

// IsValid reports whether this version passed validation at append time.
func (v *Version) IsValid() bool {
	return v.ValidationStatus == ValidationValid
}

// Clone returns a deep copy so stores never hand out aliased state.
func (v *Version) Clone() *Version {
	out := *v
	out.Payload = v.Payload.Clone()
	out.ValidationErrors = append([]string(nil), v.ValidationErrors...)
	return &out
}

// EditHistoryEntry records one field-level change that produced a corrected
// version. OldValue and NewValue are rendered strings; an empty OldValue
// means the field was absent before, an empty NewValue means it was removed.
type EditHistoryEntry struct {
	VersionID id.VersionID `json:"version_id"`
	FieldPath string       `json:"field_path"`
	OldValue  string       `json:"old_value,omitempty"`
	NewValue  string       `json:"new_value,omitempty"`
	EditedBy  string       `json:"edited_by"`
	EditedAt  time.Time    `json:"edited_at"`
}

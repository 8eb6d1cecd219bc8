// Package domain provides typed identifiers and domain primitives shared
// across packages.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-type
// assignment (a ReportID can never be passed where a VersionID is expected).
// Construct via NewXxxID for fresh identities or ParseXxxID at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "labfhir/pkg/domain-errors"
)

// ReportID identifies one uploaded lab report.
type ReportID uuid.UUID

// SubjectID identifies a patient profile.
type SubjectID uuid.UUID

// VersionID identifies one structured-data version of a report.
type VersionID uuid.UUID

// ArtifactID identifies one generated bundle artifact.
type ArtifactID uuid.UUID

// EventID identifies one audit trail event.
type EventID uuid.UUID

func NewReportID() ReportID     { return ReportID(uuid.New()) }
func NewSubjectID() SubjectID   { return SubjectID(uuid.New()) }
func NewVersionID() VersionID   { return VersionID(uuid.New()) }
func NewArtifactID() ArtifactID { return ArtifactID(uuid.New()) }
func NewEventID() EventID       { return EventID(uuid.New()) }

func (id ReportID) String() string   { return uuid.UUID(id).String() }
func (id SubjectID) String() string  { return uuid.UUID(id).String() }
func (id VersionID) String() string  { return uuid.UUID(id).String() }
func (id ArtifactID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string    { return uuid.UUID(id).String() }

func (id ReportID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id SubjectID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id VersionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ArtifactID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. All ParseXxxID functions funnel through here.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be the nil UUID")
	}
	return u, nil
}

// ParseReportID validates and converts a string into a ReportID.
func ParseReportID(s string) (ReportID, error) {
	u, err := parseUUID(s, "report")
	if err != nil {
		return ReportID{}, err
	}
	return ReportID(u), nil
}

// ParseSubjectID validates and converts a string into a SubjectID.
func ParseSubjectID(s string) (SubjectID, error) {
	u, err := parseUUID(s, "subject")
	if err != nil {
		return SubjectID{}, err
	}
	return SubjectID(u), nil
}

// ParseVersionID validates and converts a string into a VersionID.
func ParseVersionID(s string) (VersionID, error) {
	u, err := parseUUID(s, "version")
	if err != nil {
		return VersionID{}, err
	}
	return VersionID(u), nil
}

// ParseArtifactID validates and converts a string into an ArtifactID.
func ParseArtifactID(s string) (ArtifactID, error) {
	u, err := parseUUID(s, "artifact")
	if err != nil {
		return ArtifactID{}, err
	}
	return ArtifactID(u), nil
}

// ParseEventID validates and converts a string into an EventID.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event")
	if err != nil {
		return EventID{}, err
	}
	return EventID(u), nil
}

// Text marshaling renders IDs as canonical UUID strings in JSON and back.
// Defined types over uuid.UUID do not inherit its methods, and without these
// encoding/json would emit the underlying byte array.

func (id ReportID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id SubjectID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id VersionID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id ArtifactID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id EventID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *ReportID) UnmarshalText(b []byte) error {
	parsed, err := ParseReportID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *SubjectID) UnmarshalText(b []byte) error {
	parsed, err := ParseSubjectID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *VersionID) UnmarshalText(b []byte) error {
	parsed, err := ParseVersionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ArtifactID) UnmarshalText(b []byte) error {
	parsed, err := ParseArtifactID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *EventID) UnmarshalText(b []byte) error {
	parsed, err := ParseEventID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

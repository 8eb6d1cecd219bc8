// Package models defines the subject (patient profile) entity. Reports
// reference subjects by ID; observation identities key on the lab-assigned
// external subject identifier, so that field is immutable once set.
package models

import (
	"strings"
	"time"

	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// SubjectType distinguishes human and veterinary profiles.
type SubjectType string

const (
	SubjectHuman      SubjectType = "human"
	SubjectVeterinary SubjectType = "veterinary"
)

var validSubjectTypes = map[SubjectType]bool{
	SubjectHuman:      true,
	SubjectVeterinary: true,
}

// ParseSubjectType validates external input against the known types.
func ParseSubjectType(s string) (SubjectType, error) {
	t := SubjectType(s)
	if !validSubjectTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "subject_type must be \"human\" or \"veterinary\"")
	}
	return t, nil
}

// Subject is one patient profile. ExternalSubjectID is the lab-assigned
// identifier (unique across subjects) that derived observation IDs key on.
type Subject struct {
	ID                id.SubjectID `json:"id"`
	ExternalSubjectID string       `json:"external_subject_id"`
	DisplayName       string       `json:"display_name"`
	SubjectType       SubjectType  `json:"subject_type"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// NewSubject constructs a validated subject profile.
func NewSubject(subjectID id.SubjectID, externalID, displayName string, subjectType SubjectType, now time.Time) (*Subject, error) {
	externalID = strings.TrimSpace(externalID)
	displayName = strings.TrimSpace(displayName)

	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject id is required")
	}
	if externalID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "external_subject_id is required")
	}
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "display_name is required")
	}
	if !validSubjectTypes[subjectType] {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject_type must be \"human\" or \"veterinary\"")
	}
	return &Subject{
		ID:                subjectID,
		ExternalSubjectID: externalID,
		DisplayName:       displayName,
		SubjectType:       subjectType,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Clone returns a copy so stores never hand out aliased state.
func (s *Subject) Clone() *Subject {
	out := *s
	return &out
}

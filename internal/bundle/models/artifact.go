// Package models defines the bundle artifact entity: one generated document
// per (report, version, generation) with its content hash.
package models

import (
	"encoding/json"
	"time"

	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// GenerationMode records why an artifact was produced.
type GenerationMode string

const (
	ModeInitial      GenerationMode = "initial"
	ModeRegeneration GenerationMode = "regeneration"
)

var validModes = map[GenerationMode]bool{
	ModeInitial:      true,
	ModeRegeneration: true,
}

// ParseGenerationMode validates external input against the known modes. An
// empty value defaults to initial.
func ParseGenerationMode(s string) (GenerationMode, error) {
	if s == "" {
		return ModeInitial, nil
	}
	m := GenerationMode(s)
	if !validModes[m] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "generation mode must be \"initial\" or \"regeneration\"")
	}
	return m, nil
}

// BundleArtifact is one stored assembly output. Document holds the canonical
// bytes exactly as hashed; GeneratedAt is the only wall-clock field and sits
// outside the hashed content.
type BundleArtifact struct {
	ID          id.ArtifactID   `json:"id"`
	ReportID    id.ReportID     `json:"report_id"`
	VersionID   id.VersionID    `json:"version_id"`
	Document    json.RawMessage `json:"document"`
	ContentHash string          `json:"content_hash"`
	Mode        GenerationMode  `json:"generation_mode"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// NewBundleArtifact constructs a validated artifact record.
func NewBundleArtifact(artifactID id.ArtifactID, reportID id.ReportID, versionID id.VersionID,
	document []byte, contentHash string, mode GenerationMode, now time.Time) (*BundleArtifact, error) {

	if artifactID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "artifact id is required")
	}
	if reportID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "report id is required")
	}
	if versionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "version id is required")
	}
	if len(document) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "artifact document is required")
	}
	if contentHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "artifact content hash is required")
	}
	if !validModes[mode] {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "generation mode must be \"initial\" or \"regeneration\"")
	}
	return &BundleArtifact{
		ID:          artifactID,
		ReportID:    reportID,
		VersionID:   versionID,
		Document:    append(json.RawMessage(nil), document...),
		ContentHash: contentHash,
		Mode:        mode,
		GeneratedAt: now,
	}, nil
}

// Clone returns a deep copy so stores never hand out aliased state.
func (a *BundleArtifact) Clone() *BundleArtifact {
	out := *a
	out.Document = append(json.RawMessage(nil), a.Document...)
	return &out
}

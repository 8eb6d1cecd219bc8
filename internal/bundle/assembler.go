package bundle

import (
	"fmt"

	"labfhir/internal/determinism"
	"labfhir/internal/labdata"
	reportModel "labfhir/internal/report/models"
	subjectModel "labfhir/internal/subject/models"
	dErrors "labfhir/pkg/domain-errors"
)

// AssemblyInput carries everything one assembly reads. The assembler never
// touches stores or clocks: identical inputs yield identical documents.
type AssemblyInput struct {
	Subject *subjectModel.Subject
	Report  *reportModel.Report
	Payload labdata.Payload
}

// Document is one assembled bundle: the structured form, the canonical
// bytes, and the SHA-256 hex of those bytes.
type Document struct {
	Bundle      Bundle
	Canonical   []byte
	ContentHash string
}

// Assembler builds transaction bundles. Entries carry upsert instructions:
// the Patient is POSTed, every deterministically-identified resource is PUT
// so re-submission of a regenerated bundle overwrites instead of
// duplicating.
type Assembler struct {
	terminology Terminology
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithTerminology replaces the default analyte-to-LOINC table.
func WithTerminology(t Terminology) AssemblerOption {
	return func(a *Assembler) {
		a.terminology = t
	}
}

// NewAssembler constructs an assembler with the default terminology.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{terminology: DefaultTerminology()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the bundle for one report version.
//
// Entry order is fixed: Patient, DocumentReference, one Observation per
// measurement in payload order, DiagnosticReport. Every timestamp in the
// document comes from the payload or immutable report fields, never from
// the wall clock, so the content hash is reproducible.
func (a *Assembler) Assemble(in AssemblyInput) (*Document, error) {
	if in.Subject == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "assembly requires a subject")
	}
	if in.Report == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "assembly requires a report")
	}

	subjectUUID := in.Subject.ID.String()
	entries := make([]BundleEntry, 0, len(in.Payload.Measurements)+3)

	patient := Patient{
		ResourceType: "Patient",
		Identifier:   []Identifier{{System: SystemSubjectID, Value: in.Subject.ExternalSubjectID}},
	}
	if in.Subject.DisplayName != "" {
		patient.Name = []HumanName{{Text: in.Subject.DisplayName}}
	}
	entries = append(entries, BundleEntry{
		FullURL:  "urn:uuid:" + subjectUUID,
		Resource: patient,
		Request:  BundleRequest{Method: "POST", URL: "Patient"},
	})

	docRef, err := a.documentReference(subjectUUID, in.Report)
	if err != nil {
		return nil, err
	}
	entries = append(entries, BundleEntry{
		FullURL:  "DocumentReference/" + docRef.ID,
		Resource: docRef,
		Request:  BundleRequest{Method: "PUT", URL: "DocumentReference/" + docRef.ID},
	})

	observationRefs := make([]Reference, 0, len(in.Payload.Measurements))
	for i, m := range in.Payload.Measurements {
		obs, err := a.observation(subjectUUID, in.Subject.ExternalSubjectID, m, i)
		if err != nil {
			return nil, err
		}
		observationRefs = append(observationRefs, Reference{Reference: "Observation/" + obs.ID})
		entries = append(entries, BundleEntry{
			FullURL:  "Observation/" + obs.ID,
			Resource: obs,
			Request:  BundleRequest{Method: "PUT", URL: "Observation/" + obs.ID},
		})
	}

	// The aggregate record keys on the payload's report date when the lab
	// stated one, otherwise on the upload time frozen at submission.
	reportTime := in.Report.CreatedAt
	if in.Payload.ReportDate != nil {
		reportTime = *in.Payload.ReportDate
	}
	diagID := determinism.DiagnosticReportID(in.Subject.ExternalSubjectID, reportTime, in.Report.ContentHash)
	diag := DiagnosticReport{
		ResourceType:      "DiagnosticReport",
		ID:                diagID,
		Status:            "final",
		Code:              labReportConcept(),
		Subject:           patientReference(subjectUUID),
		EffectiveDateTime: determinism.Canonicalize(reportTime),
		Result:            observationRefs,
	}
	entries = append(entries, BundleEntry{
		FullURL:  "DiagnosticReport/" + diagID,
		Resource: diag,
		Request:  BundleRequest{Method: "PUT", URL: "DiagnosticReport/" + diagID},
	})

	document := Bundle{
		ResourceType: "Bundle",
		Type:         "transaction",
		Entry:        entries,
	}
	canonical, err := MarshalCanonical(document)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize bundle")
	}

	return &Document{
		Bundle:      document,
		Canonical:   canonical,
		ContentHash: determinism.ContentHash(canonical),
	}, nil
}

func (a *Assembler) documentReference(subjectUUID string, report *reportModel.Report) (DocumentReference, error) {
	attachmentHash, err := determinism.HexToBase64(report.ContentHash)
	if err != nil {
		return DocumentReference{}, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "report content hash is not valid hex")
	}
	return DocumentReference{
		ResourceType: "DocumentReference",
		ID:           determinism.DocumentReferenceID(report.ContentHash),
		Status:       "current",
		DocStatus:    "final",
		Type:         labReportConcept(),
		Subject:      patientReference(subjectUUID),
		Identifier:   []Identifier{{System: SystemFileHash, Value: report.ContentHash}},
		Content: []DocumentContent{{
			Attachment: Attachment{
				ContentType: report.MimeType,
				Title:       report.OriginalFilename,
				Hash:        attachmentHash,
			},
		}},
	}, nil
}

func (a *Assembler) observation(subjectUUID, externalSubjectID string, m labdata.Measurement, index int) (Observation, error) {
	analyte := m.NormalizedAnalyteCode
	if analyte == "" {
		analyte = m.OriginalAnalyteName
	}
	unit := m.NormalizedUnit
	if unit == "" {
		unit = m.OriginalUnit
	}

	value := m.ValueComponent()
	if value == nil {
		return Observation{}, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("measurements[%d]: no value for value_type %q", index, m.ValueType))
	}

	obs := Observation{
		ResourceType:      "Observation",
		ID:                determinism.ObservationID(externalSubjectID, m.CollectionDateTime, analyte, value, unit),
		Status:            "final",
		Code:              a.analyteConcept(m),
		Subject:           patientReference(subjectUUID),
		EffectiveDateTime: determinism.Canonicalize(m.CollectionDateTime),
		Issued:            determinism.Canonicalize(m.CollectionDateTime),
	}
	if m.ResultDateTime != nil {
		obs.Issued = determinism.Canonicalize(*m.ResultDateTime)
	}

	switch m.ValueType {
	case labdata.ValueNumeric:
		obs.ValueQuantity = &Quantity{Value: *m.NumericValue, Unit: unit, System: SystemUCUM, Code: unit}
	case labdata.ValueOperatorNumeric:
		obs.ValueQuantity = &Quantity{Value: *m.NumericValue, Unit: unit, System: SystemUCUM, Code: unit}
		obs.Interpretation = []CodeableConcept{{Text: m.DisplayValue() + " " + unit}}
	case labdata.ValueQualitative:
		obs.ValueString = m.QualitativeValue
	default:
		return Observation{}, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("measurements[%d]: unknown value type %q", index, m.ValueType))
	}

	if m.ReferenceRangeText != "" {
		obs.ReferenceRange = []ReferenceRange{{Text: m.ReferenceRangeText}}
	}
	return obs, nil
}

// analyteConcept maps to LOINC when the terminology covers the normalized
// analyte, otherwise to the local analyte system. The original analyte name
// is always preserved as the concept text.
func (a *Assembler) analyteConcept(m labdata.Measurement) CodeableConcept {
	if m.NormalizedAnalyteCode != "" {
		if coding, ok := a.terminology.LOINC(m.NormalizedAnalyteCode); ok {
			return CodeableConcept{Coding: []Coding{coding}, Text: m.OriginalAnalyteName}
		}
		return CodeableConcept{
			Coding: []Coding{{System: SystemAnalyte, Code: m.NormalizedAnalyteCode, Display: m.OriginalAnalyteName}},
			Text:   m.OriginalAnalyteName,
		}
	}
	return CodeableConcept{
		Coding: []Coding{{System: SystemAnalyte, Code: m.OriginalAnalyteName, Display: m.OriginalAnalyteName}},
		Text:   m.OriginalAnalyteName,
	}
}

// Package bundle assembles FHIR R4 clinical-record bundles from structured
// lab payloads. Assembly is a pure function of its inputs: resource
// identifiers come from the determinism kernel and every timestamp inside
// the document derives from immutable report fields, so re-assembling the
// same version yields byte-identical output.
package bundle

// Identifier systems and codings used across generated resources.
const (
	SystemSubjectID = "urn:labfhir:subject-id"
	SystemFileHash  = "urn:labfhir:file-sha256"
	SystemAnalyte   = "urn:labfhir:analyte"
	SystemLOINC     = "http://loinc.org"
	SystemUCUM      = "http://unitsofmeasure.org"

	// LOINC code for a laboratory report document.
	LOINCLabReport        = "11502-2"
	LOINCLabReportDisplay = "Laboratory report"
)

// The structs below cover exactly the field subset generated bundles carry.
// Optional fields are omitempty so absent values disappear from the
// canonical form instead of serializing as empty strings.

type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

// Quantity is always emitted complete: the unit may be the empty string when
// the source measurement carried none, and code mirrors unit.
type Quantity struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	System string  `json:"system"`
	Code   string  `json:"code"`
}

type HumanName struct {
	Text string `json:"text,omitempty"`
}

type Attachment struct {
	ContentType string `json:"contentType,omitempty"`
	Title       string `json:"title,omitempty"`
	Hash        string `json:"hash,omitempty"`
}

type DocumentContent struct {
	Attachment Attachment `json:"attachment"`
}

type ReferenceRange struct {
	Text string `json:"text,omitempty"`
}

// Patient carries no resource id: it enters the bundle as a POST entry
// addressed by its fullUrl urn:uuid, while other resources reference it as
// Patient/<subject uuid>.
type Patient struct {
	ResourceType string       `json:"resourceType"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
}

type DocumentReference struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	DocStatus    string            `json:"docStatus"`
	Type         CodeableConcept   `json:"type"`
	Subject      Reference         `json:"subject"`
	Identifier   []Identifier      `json:"identifier,omitempty"`
	Content      []DocumentContent `json:"content"`
}

type Observation struct {
	ResourceType      string            `json:"resourceType"`
	ID                string            `json:"id"`
	Status            string            `json:"status"`
	Code              CodeableConcept   `json:"code"`
	Subject           Reference         `json:"subject"`
	EffectiveDateTime string            `json:"effectiveDateTime"`
	Issued            string            `json:"issued"`
	ValueQuantity     *Quantity         `json:"valueQuantity,omitempty"`
	ValueString       string            `json:"valueString,omitempty"`
	Interpretation    []CodeableConcept `json:"interpretation,omitempty"`
	ReferenceRange    []ReferenceRange  `json:"referenceRange,omitempty"`
}

type DiagnosticReport struct {
	ResourceType      string          `json:"resourceType"`
	ID                string          `json:"id"`
	Status            string          `json:"status"`
	Code              CodeableConcept `json:"code"`
	Subject           Reference       `json:"subject"`
	EffectiveDateTime string          `json:"effectiveDateTime"`
	Result            []Reference     `json:"result,omitempty"`
}

// BundleRequest carries the conditional-upsert instruction for one entry:
// POST for the Patient (server-assigned identity), PUT for everything with
// a deterministic id so re-submission overwrites instead of duplicating.
type BundleRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type BundleEntry struct {
	FullURL  string        `json:"fullUrl"`
	Resource any           `json:"resource"`
	Request  BundleRequest `json:"request"`
}

type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type"`
	Entry        []BundleEntry `json:"entry"`
}

func labReportConcept() CodeableConcept {
	return CodeableConcept{
		Coding: []Coding{{System: SystemLOINC, Code: LOINCLabReport, Display: LOINCLabReportDisplay}},
		Text:   LOINCLabReportDisplay,
	}
}

func patientReference(subjectUUID string) Reference {
	return Reference{Reference: "Patient/" + subjectUUID}
}

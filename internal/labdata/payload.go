// Package labdata defines the structured payload exchanged between the
// extraction step, the version ledger, and the bundle assembler: an ordered
// list of lab measurements plus optional report-level metadata. The payload
// is schema-versioned and validated before it is ever persisted.
package labdata

import (
	"time"

	"labfhir/internal/determinism"
	"labfhir/pkg/domain"
)

// ValueType classifies how a measurement's value is expressed.
type ValueType string

const (
	// ValueNumeric is a plain quantity, e.g. glucose 95.0 mg/dL.
	ValueNumeric ValueType = "numeric"
	// ValueQualitative is a textual result, e.g. "NEGATIVE".
	ValueQualitative ValueType = "qualitative"
	// ValueOperatorNumeric is a threshold-qualified quantity, e.g. "<0.1".
	ValueOperatorNumeric ValueType = "operator_numeric"
)

// Operator qualifies an operator_numeric value.
type Operator string

const (
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

var validOperators = map[Operator]bool{
	OpLessThan:       true,
	OpLessOrEqual:    true,
	OpGreaterThan:    true,
	OpGreaterOrEqual: true,
}

// Measurement is one analyte result extracted from a report.
type Measurement struct {
	OriginalAnalyteName   string     `json:"original_analyte_name"`
	NormalizedAnalyteCode string     `json:"normalized_analyte_code,omitempty"`
	ValueType             ValueType  `json:"value_type"`
	NumericValue          *float64   `json:"numeric_value,omitempty"`
	Operator              Operator   `json:"operator,omitempty"`
	QualitativeValue      string     `json:"qualitative_value,omitempty"`
	OriginalUnit          string     `json:"original_unit,omitempty"`
	NormalizedUnit        string     `json:"normalized_unit,omitempty"`
	ReferenceRangeText    string     `json:"reference_range_text,omitempty"`
	CollectionDateTime    time.Time  `json:"collection_datetime"`
	ResultDateTime        *time.Time `json:"result_datetime,omitempty"`
}

// Payload is the full structured representation of one report's content.
type Payload struct {
	SchemaVersion     domain.SchemaVersion `json:"schema_version"`
	SubjectIdentifier string               `json:"subject_identifier,omitempty"`
	ReportDate        *time.Time           `json:"report_date,omitempty"`
	OrderingProvider  string               `json:"ordering_provider,omitempty"`
	PerformingLab     string               `json:"performing_lab,omitempty"`
	Measurements      []Measurement        `json:"measurements"`
}

// Normalize fills derived fields in place: the normalized analyte code and
// unit, applied with the same kernel functions used at ID-derivation time,
// and the default schema version when untagged. Call before persisting so
// stored payloads carry the normalization the assembler will key on.
func (p *Payload) Normalize() {
	if p.SchemaVersion == "" {
		p.SchemaVersion = domain.CurrentSchemaVersion()
	}
	for i := range p.Measurements {
		m := &p.Measurements[i]
		if m.NormalizedAnalyteCode == "" {
			m.NormalizedAnalyteCode = determinism.NormalizeAnalyteName(m.OriginalAnalyteName)
		}
		if m.NormalizedUnit == "" && m.OriginalUnit != "" {
			m.NormalizedUnit = determinism.NormalizeUnit(m.OriginalUnit)
		}
	}
}

// ValueComponent returns the measurement value in the form the determinism
// kernel canonicalizes for observation identity: the numeric value for
// quantity kinds, the qualitative string otherwise. Returns nil when the
// required value is absent (invalid payloads never reach ID derivation).
func (m Measurement) ValueComponent() any {
	switch m.ValueType {
	case ValueQualitative:
		return m.QualitativeValue
	default:
		if m.NumericValue == nil {
			return nil
		}
		return *m.NumericValue
	}
}

// DisplayValue renders the value for human-readable annotations, e.g. the
// "<0.1 mg/dL" interpretation text on threshold-qualified observations.
func (m Measurement) DisplayValue() string {
	switch m.ValueType {
	case ValueQualitative:
		return m.QualitativeValue
	case ValueOperatorNumeric:
		if m.NumericValue == nil {
			return string(m.Operator)
		}
		return string(m.Operator) + determinism.Canonicalize(*m.NumericValue)
	default:
		if m.NumericValue == nil {
			return ""
		}
		return determinism.Canonicalize(*m.NumericValue)
	}
}

// Clone returns a deep copy. Ledger appends store payloads verbatim;
// callers that keep mutating their input must not alias stored state.
func (p Payload) Clone() Payload {
	out := p
	if p.ReportDate != nil {
		d := *p.ReportDate
		out.ReportDate = &d
	}
	out.Measurements = make([]Measurement, len(p.Measurements))
	for i, m := range p.Measurements {
		out.Measurements[i] = m.clone()
	}
	return out
}

func (m Measurement) clone() Measurement {
	out := m
	if m.NumericValue != nil {
		v := *m.NumericValue
		out.NumericValue = &v
	}
	if m.ResultDateTime != nil {
		t := *m.ResultDateTime
		out.ResultDateTime = &t
	}
	return out
}

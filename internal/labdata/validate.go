package labdata

import (
	"fmt"
	"strings"
	"time"

	dErrors "labfhir/pkg/domain-errors"
)

// Validate checks the payload against the schema contract and returns one
// issue string per violation, each prefixed with the offending field path
// (e.g. "measurements[2].numeric_value: required for value_type numeric").
// An empty slice means the payload is valid. now anchors the future-dated
// collection check so callers control the clock.
func (p *Payload) Validate(now time.Time) []string {
	var issues []string

	if !p.SchemaVersion.IsValid() && p.SchemaVersion != "" {
		issues = append(issues, fmt.Sprintf("schema_version: unsupported value %q", p.SchemaVersion))
	}
	if len(p.Measurements) == 0 {
		issues = append(issues, "measurements: at least one measurement is required")
	}

	for i, m := range p.Measurements {
		issues = append(issues, m.validate(now, fmt.Sprintf("measurements[%d]", i))...)
	}
	return issues
}

func (m Measurement) validate(now time.Time, path string) []string {
	var issues []string
	add := func(field, msg string) {
		issues = append(issues, path+"."+field+": "+msg)
	}

	if strings.TrimSpace(m.OriginalAnalyteName) == "" {
		add("original_analyte_name", "must not be empty")
	}

	switch m.ValueType {
	case ValueNumeric:
		if m.NumericValue == nil {
			add("numeric_value", "required for value_type numeric")
		}
		if m.Operator != "" {
			add("operator", "only allowed for value_type operator_numeric")
		}
		if m.QualitativeValue != "" {
			add("qualitative_value", "only allowed for value_type qualitative")
		}
	case ValueOperatorNumeric:
		if m.NumericValue == nil {
			add("numeric_value", "required for value_type operator_numeric")
		}
		if m.Operator == "" {
			add("operator", "required for value_type operator_numeric")
		} else if !validOperators[m.Operator] {
			add("operator", fmt.Sprintf("unknown operator %q", m.Operator))
		}
		if m.QualitativeValue != "" {
			add("qualitative_value", "only allowed for value_type qualitative")
		}
	case ValueQualitative:
		if strings.TrimSpace(m.QualitativeValue) == "" {
			add("qualitative_value", "required for value_type qualitative")
		}
		if m.NumericValue != nil {
			add("numeric_value", "only allowed for numeric value types")
		}
		if m.Operator != "" {
			add("operator", "only allowed for value_type operator_numeric")
		}
	default:
		add("value_type", fmt.Sprintf("unknown value type %q", m.ValueType))
	}

	if m.CollectionDateTime.IsZero() {
		add("collection_datetime", "must not be empty")
	} else if m.CollectionDateTime.After(now) {
		add("collection_datetime", "must not be in the future")
	}
	return issues
}

// ValidationError wraps a non-empty issue list into a coded validation
// error. Callers persist the raw issues on the rejected version and return
// this error to the caller.
func ValidationError(issues []string) error {
	return dErrors.New(dErrors.CodeValidation, "payload validation failed: "+strings.Join(issues, "; "))
}

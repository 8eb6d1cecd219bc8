package labdata

import (
	"fmt"
	"time"

	"labfhir/internal/determinism"
)

// FieldChange records one field-level difference between two payloads,
// identified by a dotted path into the payload structure. Old and New hold
// rendered values; an empty Old means the field was absent before, an empty
// New means it was removed.
type FieldChange struct {
	Path string
	Old  string
	New  string
}

// measurementFieldOrder fixes the order changes are reported in, so edit
// history stays stable for identical edits.
var measurementFieldOrder = []string{
	"original_analyte_name",
	"normalized_analyte_code",
	"value_type",
	"numeric_value",
	"operator",
	"qualitative_value",
	"original_unit",
	"normalized_unit",
	"reference_range_text",
	"collection_datetime",
	"result_datetime",
}

// Diff compares two payloads field by field and returns every change, in a
// deterministic order: report-level metadata first, then measurements by
// index. Measurements are compared positionally; an index present on only
// one side reports each of its populated fields with the missing side empty.
func Diff(prev, next Payload) []FieldChange {
	var changes []FieldChange
	appendChange := func(path, oldV, newV string) {
		if oldV != newV {
			changes = append(changes, FieldChange{Path: path, Old: oldV, New: newV})
		}
	}

	appendChange("subject_identifier", prev.SubjectIdentifier, next.SubjectIdentifier)
	appendChange("report_date", renderTime(prev.ReportDate), renderTime(next.ReportDate))
	appendChange("ordering_provider", prev.OrderingProvider, next.OrderingProvider)
	appendChange("performing_lab", prev.PerformingLab, next.PerformingLab)

	n := len(prev.Measurements)
	if len(next.Measurements) > n {
		n = len(next.Measurements)
	}
	for i := 0; i < n; i++ {
		var prevFields, nextFields map[string]string
		if i < len(prev.Measurements) {
			prevFields = prev.Measurements[i].fields()
		}
		if i < len(next.Measurements) {
			nextFields = next.Measurements[i].fields()
		}
		for _, field := range measurementFieldOrder {
			path := fmt.Sprintf("measurements[%d].%s", i, field)
			appendChange(path, prevFields[field], nextFields[field])
		}
	}
	return changes
}

// fields renders each measurement field to its canonical string form. Times
// and numbers go through the determinism kernel so diffs and identifiers
// agree on rendering.
func (m Measurement) fields() map[string]string {
	out := map[string]string{
		"original_analyte_name":   m.OriginalAnalyteName,
		"normalized_analyte_code": m.NormalizedAnalyteCode,
		"value_type":              string(m.ValueType),
		"operator":                string(m.Operator),
		"qualitative_value":       m.QualitativeValue,
		"original_unit":           m.OriginalUnit,
		"normalized_unit":         m.NormalizedUnit,
		"reference_range_text":    m.ReferenceRangeText,
	}
	if m.NumericValue != nil {
		out["numeric_value"] = determinism.Canonicalize(*m.NumericValue)
	}
	if !m.CollectionDateTime.IsZero() {
		out["collection_datetime"] = determinism.Canonicalize(m.CollectionDateTime)
	}
	if m.ResultDateTime != nil {
		out["result_datetime"] = determinism.Canonicalize(*m.ResultDateTime)
	}
	return out
}

func renderTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return determinism.Canonicalize(*t)
}

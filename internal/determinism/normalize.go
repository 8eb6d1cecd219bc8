package determinism

import "strings"

// unitTable maps raw unit spellings (lower-cased, trimmed) to their canonical
// UCUM-style form. The table is part of the identifier contract: a raw unit
// string must normalize identically at extraction time and at ID-derivation
// time, or observation identities diverge between runs. Extend it, never
// re-map an existing key.
var unitTable = map[string]string{
	"mg/dl":      "mg/dL",
	"g/dl":       "g/dL",
	"mmol/l":     "mmol/L",
	"micromol/l": "umol/L",
	"μmol/l":     "umol/L",
	"ug/dl":      "ug/dL",
	"μg/dl":      "ug/dL",
	"ng/ml":      "ng/mL",
	"pg/ml":      "pg/mL",
	"iu/l":       "IU/L",
	"u/l":        "U/L",
	"cells/mm3":  "cells/mm3",
	"cells/ul":   "cells/uL",
	"cells/μl":   "cells/uL",
	"%":          "%",
	"percent":    "%",
}

// NormalizeAnalyteName canonicalizes an analyte name: upper-case, trimmed,
// internal whitespace runs collapsed to one space. "  hemoglobin   a1c " and
// "Hemoglobin A1C" normalize to the same value.
func NormalizeAnalyteName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// NormalizeUnit canonicalizes a unit string via the unit table; unknown
// units fall back to their lower-cased, trimmed form so the same raw input
// still maps to one stable output.
func NormalizeUnit(unit string) string {
	key := strings.ToLower(strings.TrimSpace(unit))
	if canonical, ok := unitTable[key]; ok {
		return canonical
	}
	return key
}

package bundle

import "strings"

// Terminology resolves normalized analyte codes to standard codings. The
// assembler consults it per measurement: a hit yields a LOINC coding, a miss
// falls back to the local analyte system. Injectable so deployments can
// extend the table without forking the assembler.
type Terminology struct {
	loinc map[string]Coding
}

// NewTerminology builds a lookup over the given LOINC codings, keyed by
// normalized analyte code (upper-cased, trimmed).
func NewTerminology(codings map[string]Coding) Terminology {
	loinc := make(map[string]Coding, len(codings))
	for analyte, coding := range codings {
		loinc[strings.ToUpper(strings.TrimSpace(analyte))] = coding
	}
	return Terminology{loinc: loinc}
}

// LOINC returns the coding for a normalized analyte code, if mapped.
func (t Terminology) LOINC(normalizedAnalyte string) (Coding, bool) {
	coding, ok := t.loinc[strings.ToUpper(strings.TrimSpace(normalizedAnalyte))]
	return coding, ok
}

// DefaultTerminology covers the common chemistry and hematology panels.
// Expansion beyond these analytes is a deployment concern, not a code
// change: pass a custom Terminology to the assembler.
func DefaultTerminology() Terminology {
	return NewTerminology(map[string]Coding{
		"GLU":            {System: SystemLOINC, Code: "2339-0", Display: "Glucose [Mass/volume] in Blood"},
		"GLUCOSE":        {System: SystemLOINC, Code: "2339-0", Display: "Glucose [Mass/volume] in Blood"},
		"HBA1C":          {System: SystemLOINC, Code: "4548-4", Display: "Hemoglobin A1c/Hemoglobin.total in Blood"},
		"HEMOGLOBIN A1C": {System: SystemLOINC, Code: "4548-4", Display: "Hemoglobin A1c/Hemoglobin.total in Blood"},
		"CREATININE":     {System: SystemLOINC, Code: "2160-0", Display: "Creatinine [Mass/volume] in Serum or Plasma"},
		"BUN":            {System: SystemLOINC, Code: "3094-0", Display: "Urea nitrogen [Mass/volume] in Serum or Plasma"},
		"SODIUM":         {System: SystemLOINC, Code: "2951-2", Display: "Sodium [Moles/volume] in Serum or Plasma"},
		"POTASSIUM":      {System: SystemLOINC, Code: "2823-3", Display: "Potassium [Moles/volume] in Serum or Plasma"},
		"CHLORIDE":       {System: SystemLOINC, Code: "2075-0", Display: "Chloride [Moles/volume] in Serum or Plasma"},
		"CO2":            {System: SystemLOINC, Code: "2028-9", Display: "Carbon dioxide, total [Moles/volume] in Serum or Plasma"},
		"CALCIUM":        {System: SystemLOINC, Code: "17861-6", Display: "Calcium [Mass/volume] in Serum or Plasma"},
		"ALT":            {System: SystemLOINC, Code: "1742-6", Display: "Alanine aminotransferase [Enzymatic activity/volume] in Serum or Plasma"},
		"AST":            {System: SystemLOINC, Code: "1920-8", Display: "Aspartate aminotransferase [Enzymatic activity/volume] in Serum or Plasma"},
		"WBC":            {System: SystemLOINC, Code: "6690-2", Display: "Leukocytes [#/volume] in Blood by Automated count"},
		"RBC":            {System: SystemLOINC, Code: "789-8", Display: "Erythrocytes [#/volume] in Blood by Automated count"},
		"HEMOGLOBIN":     {System: SystemLOINC, Code: "718-7", Display: "Hemoglobin [Mass/volume] in Blood"},
		"HEMATOCRIT":     {System: SystemLOINC, Code: "4544-3", Display: "Hematocrit [Volume Fraction] of Blood by Automated count"},
		"PLATELETS":      {System: SystemLOINC, Code: "777-3", Display: "Platelets [#/volume] in Blood by Automated count"},
	})
}

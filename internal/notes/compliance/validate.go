package compliance

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationResult is the structured outcome of one validation pass.
// Errors block finalization; warnings never do.
type ValidationResult struct {
	Valid              bool     `json:"valid"`
	Errors             []string `json:"errors"`
	Warnings           []string `json:"warnings"`
	MissingRequired    []string `json:"missing_required"`
	MissingConditional []string `json:"missing_conditional"`
	CompletenessScore  int      `json:"completeness_score"`
}

// Required regulatory fields, in report order.
const (
	FieldPatientID                = "patient_id"
	FieldPractitionerID           = "practitioner_id"
	FieldTimestamp                = "timestamp"
	FieldSessionType              = "session_type"
	FieldChiefComplaint           = "chief_complaint"
	FieldRedFlagsAssessed         = "red_flags_assessed"
	FieldRedFlagsList             = "red_flags"
	FieldContraindicationsChecked = "contraindications_checked"
	FieldPlanDocumented           = "plan_documented"
	FieldPlanText                 = "plan_text"
)

var requiredFields = []string{
	FieldPatientID,
	FieldPractitionerID,
	FieldTimestamp,
	FieldSessionType,
	FieldChiefComplaint,
	FieldRedFlagsAssessed,
	FieldRedFlagsList,
	FieldContraindicationsChecked,
	FieldPlanDocumented,
	FieldPlanText,
}

// Validate checks the note against the required regulatory fields (hard,
// blocking) and the conditional documentation rules (soft, warnings only).
// It is pure and safe to run on every keystroke-triggered save.
func Validate(n Note) ValidationResult {
	res := ValidationResult{
		Errors:             []string{},
		Warnings:           []string{},
		MissingRequired:    []string{},
		MissingConditional: []string{},
	}

	present := map[string]bool{
		FieldPatientID:                strings.TrimSpace(n.PatientID) != "",
		FieldPractitionerID:           strings.TrimSpace(n.PractitionerID) != "",
		FieldTimestamp:                !n.Timestamp.IsZero(),
		FieldSessionType:              strings.TrimSpace(n.SessionType) != "",
		FieldChiefComplaint:           strings.TrimSpace(n.Record.ChiefComplaint) != "",
		FieldRedFlagsAssessed:         n.RedFlagsAssessed != nil,
		FieldRedFlagsList:             n.Record.RedFlags != nil,
		FieldContraindicationsChecked: n.ContraindicationsChecked != nil,
		FieldPlanDocumented:           n.PlanDocumented != nil && *n.PlanDocumented,
		FieldPlanText:                 strings.TrimSpace(n.PlanText) != "",
	}

	for _, field := range requiredFields {
		if !present[field] {
			res.MissingRequired = append(res.MissingRequired, field)
			res.Errors = append(res.Errors, fmt.Sprintf("required field missing: %s", field))
		}
	}

	narrative := narrativeText(n)

	if mentionsPain(narrative) && n.PainScale == nil {
		res.MissingConditional = append(res.MissingConditional, "pain_scale")
		res.Warnings = append(res.Warnings, "narrative mentions pain but no pain-scale entry is documented")
	}
	if mentionsMedications(narrative, n.Record.CurrentMedications) && n.MedicationsVerified == nil {
		res.MissingConditional = append(res.MissingConditional, "medication_verification")
		res.Warnings = append(res.Warnings, "medications are mentioned but not verified")
	}
	if mentionsROMLimitation(narrative) && len(n.ROMMeasurements) == 0 {
		res.MissingConditional = append(res.MissingConditional, "rom_measurements")
		res.Warnings = append(res.Warnings, "range-of-motion limitation mentioned but no structured ROM measurements documented")
	}

	if check := CrossCheckRegions(n.ObjectiveText, n.TestedRegions); !check.IsValid {
		for _, region := range check.Violations {
			res.Warnings = append(res.Warnings, fmt.Sprintf("region mentioned but not tested: %s", region))
		}
	}

	total := len(requiredFields)
	res.CompletenessScore = (total - len(res.MissingRequired)) * 100 / total
	res.Valid = len(res.MissingRequired) == 0
	return res
}

func narrativeText(n Note) string {
	parts := []string{
		n.Record.ChiefComplaint,
		strings.Join(n.Record.ClinicalFindings, " "),
		strings.Join(n.Record.RelevantFindings, " "),
		n.ObjectiveText,
		n.PlanText,
	}
	return strings.ToLower(strings.Join(parts, " "))
}

var painTerms = []string{"pain", "dolor", "algia", "doloroso", "dolorosa"}

func mentionsPain(narrative string) bool {
	return containsAny(narrative, painTerms)
}

var medicationTerms = []string{
	"medication", "medicamento", "medicacion", "medicación",
	"ibuprofen", "paracetamol", "analgesic", "analgesico", "antiinflamatorio",
}

func mentionsMedications(narrative string, meds []string) bool {
	if len(meds) > 0 {
		return true
	}
	return containsAny(narrative, medicationTerms)
}

var romTerms = []string{
	"range of motion", "rango de movimiento", "movilidad limitada",
	"limitacion de movilidad", "limitación", "restricted motion", "stiffness", "rigidez",
}

var romWordRE = regexp.MustCompile(`\brom\b`)

func mentionsROMLimitation(narrative string) bool {
	return containsAny(narrative, romTerms) || romWordRE.MatchString(narrative)
}

func containsAny(haystack string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

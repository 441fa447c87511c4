package canonical

// Record is the canonical clinical record every generation attempt maps
// onto, independent of any vendor's field naming. It is always fully
// populated: list fields are non-nil, text fields default to "", and the
// legal risk level defaults to the lowest tier. There is no undefined
// shape of this record.
type Record struct {
	ChiefComplaint         string   `json:"chief_complaint"`
	ClinicalFindings       []string `json:"clinical_findings"`
	RelevantFindings       []string `json:"relevant_findings"`
	OccupationalContext    string   `json:"occupational_context"`
	PsychosocialContext    string   `json:"psychosocial_context"`
	CurrentMedications     []string `json:"current_medications"`
	MedicalHistory         []string `json:"medical_history"`
	ProbableDiagnoses      []string `json:"probable_diagnoses"`
	RedFlags               []string `json:"red_flags"`
	YellowFlags            []string `json:"yellow_flags"`
	SuggestedPhysicalTests []string `json:"suggested_physical_tests"`
	SuggestedTreatmentPlan []string `json:"suggested_treatment_plan"`
	RecommendedReferral    string   `json:"recommended_referral"`
	EstimatedPrognosis     string   `json:"estimated_prognosis"`
	SafetyNotes            string   `json:"safety_notes"`
	LegalRiskLevel         string   `json:"legal_risk_level"`
}

// Risk tiers for LegalRiskLevel, lowest first.
const (
	RiskLow    = "bajo"
	RiskMedium = "medio"
	RiskHigh   = "alto"
)

// NewRecord returns an empty record with every field at its documented
// default.
func NewRecord() Record {
	return Record{
		ClinicalFindings:       []string{},
		RelevantFindings:       []string{},
		CurrentMedications:     []string{},
		MedicalHistory:         []string{},
		ProbableDiagnoses:      []string{},
		RedFlags:               []string{},
		YellowFlags:            []string{},
		SuggestedPhysicalTests: []string{},
		SuggestedTreatmentPlan: []string{},
		LegalRiskLevel:         RiskLow,
	}
}

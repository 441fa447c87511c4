package prompts

// Input is a superset of all fields any note prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Visit context
	VisitType   string
	SessionType string
	// Free clinical input (dictation transcript or typed notes)
	ClinicalInput string
	// Follow-up context
	PriorNoteMD            string
	TreatmentChecklistJSON string
	// Optional hints
	PatientContext string
	TokenBudget    int
}

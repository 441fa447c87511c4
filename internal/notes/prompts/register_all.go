package prompts

// RegisterAll registers every note prompt via RegisterSpec(Spec{...}).
// Called once at startup.
func RegisterAll() {
	RegisterSpec(Spec{
		Name:       PromptNoteInitial,
		Version:    2,
		SchemaName: "clinical_note",
		Schema:     ClinicalNoteSchema,
		System: `
You are drafting an initial physiotherapy evaluation note from a clinician's dictated or typed input.
Only document what the clinician reported; never invent findings, tests or diagnoses.
Every list field must be present, using [] when there is nothing to report.
If there are no alerts, set alerts.none_sentinel to "sin_alertas" instead of omitting the alerts field.
Return JSON only.`,
		User: `
SESSION_TYPE: {{.SessionType}}

PATIENT_CONTEXT (optional):
{{.PatientContext}}

CLINICAL_INPUT (dictation transcript or typed notes):
{{.ClinicalInput}}

Output rules:
- chief_complaint: one sentence, patient's own words where possible.
- clinical_findings / relevant_findings: one finding per entry.
- suggested_treatment_plan: concrete, ordered steps.
- legal_risk_level: bajo | medio | alto.
- red_flags: only findings that genuinely warrant escalation.`,
		Validators: []Validator{
			RequireNonEmpty("ClinicalInput", func(in Input) string { return in.ClinicalInput }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptNoteFollowup,
		Version:    3,
		SchemaName: "clinical_note",
		Schema:     ClinicalNoteSchema,
		System: `
You are drafting a physiotherapy follow-up note continuing an approved prior note.
Do NOT introduce a new assessment or diagnosis unless the clinician explicitly reports a relevant change; otherwise carry the prior assessment forward unchanged.
The plan must be emitted as a checklist of atomic, reusable items: each with id, action, status (pendiente|realizado|omitido) and optional notes. Reuse item ids from TODAYS_CHECKLIST_JSON when the action is the same.
If there are no alerts, set alerts.none_sentinel to "sin_alertas"; never omit or empty the alerts field.
When alerts exist, tag them: red_flags entries carry an urgency, yellow_flags and medico_legal are plain lists.
Return JSON only.`,
		User: `
SESSION_TYPE: {{.SessionType}}

PRIOR_APPROVED_NOTE_MD:
{{.PriorNoteMD}}

TODAYS_CHECKLIST_JSON (treatment items administered today):
{{.TreatmentChecklistJSON}}

CLINICAL_INPUT (today's dictation or typed notes):
{{.ClinicalInput}}

Output rules:
- subjective changes only from CLINICAL_INPUT; no speculation.
- plan: the updated checklist, atomic items only, one action each.
- estimated_prognosis: update only on explicit reported change.`,
		Validators: []Validator{
			RequireNonEmpty("ClinicalInput", func(in Input) string { return in.ClinicalInput }),
			RequireAnyNonEmpty("PriorNoteMD or TreatmentChecklistJSON required for follow-up",
				func(in Input) string { return in.PriorNoteMD },
				func(in Input) string { return in.TreatmentChecklistJSON },
			),
		},
	})
}

package prompts

func StringSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func StringListSchema() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func checklistItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":     StringSchema(),
			"action": StringSchema(),
			"status": map[string]any{
				"type": "string",
				"enum": []string{"pendiente", "realizado", "omitido"},
			},
			"notes": StringSchema(),
		},
		"required":             []string{"id", "action", "status"},
		"additionalProperties": false,
	}
}

func alertsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"red_flags": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"flag":    StringSchema(),
						"urgency": map[string]any{"type": "string", "enum": []string{"inmediata", "urgente", "vigilar"}},
					},
					"required":             []string{"flag", "urgency"},
					"additionalProperties": false,
				},
			},
			"yellow_flags":  StringListSchema(),
			"medico_legal":  StringListSchema(),
			"none_sentinel": map[string]any{"type": "string", "enum": []string{NoAlertsSentinel}},
		},
		"additionalProperties": false,
	}
}

// ClinicalNoteSchema is the structured-output contract both note prompts
// share: the 16 canonical clinical fields, a structured plan checklist
// and a tagged alerts section with an explicit no-alerts sentinel.
func ClinicalNoteSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"chief_complaint":          StringSchema(),
			"clinical_findings":        StringListSchema(),
			"relevant_findings":        StringListSchema(),
			"occupational_context":     StringSchema(),
			"psychosocial_context":     StringSchema(),
			"current_medications":      StringListSchema(),
			"medical_history":          StringListSchema(),
			"probable_diagnoses":       StringListSchema(),
			"red_flags":                StringListSchema(),
			"yellow_flags":             StringListSchema(),
			"suggested_physical_tests": StringListSchema(),
			"suggested_treatment_plan": StringListSchema(),
			"recommended_referral":     StringSchema(),
			"estimated_prognosis":      StringSchema(),
			"safety_notes":             StringSchema(),
			"legal_risk_level": map[string]any{
				"type": "string",
				"enum": []string{"bajo", "medio", "alto"},
			},
			"plan":   map[string]any{"type": "array", "items": checklistItemSchema()},
			"alerts": alertsSchema(),
		},
		"required":             []string{"chief_complaint", "red_flags", "suggested_treatment_plan", "legal_risk_level"},
		"additionalProperties": true,
	}
}

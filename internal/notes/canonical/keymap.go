package canonical

// KeymapVersion identifies the candidate-key table below. Bump it whenever
// a candidate path is added or reordered so drift diagnostics in the audit
// log can be correlated with the mapping that produced them.
const KeymapVersion = 2

type fieldKind int

const (
	kindText fieldKind = iota
	kindList
)

// fieldSpec maps one canonical field onto an ordered list of candidate
// source paths (English and Spanish vendor variants, at most one level of
// nesting). The first candidate holding a non-empty value wins. The
// canonical JSON key is always the first candidate, which makes
// normalization idempotent over already-canonical input.
type fieldSpec struct {
	name       string
	kind       fieldKind
	candidates []string
	setText    func(*Record, string)
	setList    func(*Record, []string)
}

var keymap = []fieldSpec{
	{
		name: "chief_complaint", kind: kindText,
		candidates: []string{"chief_complaint", "chiefComplaint", "motivo_consulta", "motivoConsulta", "consultation_reason", "subjective.chief_complaint", "subjetivo.motivo_consulta"},
		setText:    func(r *Record, v string) { r.ChiefComplaint = v },
	},
	{
		name: "clinical_findings", kind: kindList,
		candidates: []string{"clinical_findings", "clinicalFindings", "hallazgos_clinicos", "hallazgosClinicos", "findings", "objective.findings", "objetivo.hallazgos"},
		setList:    func(r *Record, v []string) { r.ClinicalFindings = v },
	},
	{
		name: "relevant_findings", kind: kindList,
		candidates: []string{"relevant_findings", "relevantFindings", "hallazgos_relevantes", "hallazgosRelevantes", "key_findings", "objective.relevant_findings"},
		setList:    func(r *Record, v []string) { r.RelevantFindings = v },
	},
	{
		name: "occupational_context", kind: kindText,
		candidates: []string{"occupational_context", "occupationalContext", "contexto_laboral", "contextoLaboral", "work_context", "occupation", "subjective.occupation"},
		setText:    func(r *Record, v string) { r.OccupationalContext = v },
	},
	{
		name: "psychosocial_context", kind: kindText,
		candidates: []string{"psychosocial_context", "psychosocialContext", "contexto_psicosocial", "contextoPsicosocial", "psychosocial", "subjective.psychosocial"},
		setText:    func(r *Record, v string) { r.PsychosocialContext = v },
	},
	{
		name: "current_medications", kind: kindList,
		candidates: []string{"current_medications", "currentMedications", "medications", "medicamentos", "medicacion_actual", "medicacionActual", "subjective.medications"},
		setList:    func(r *Record, v []string) { r.CurrentMedications = v },
	},
	{
		name: "medical_history", kind: kindList,
		candidates: []string{"medical_history", "medicalHistory", "antecedentes", "antecedentes_medicos", "antecedentesMedicos", "history", "subjective.history"},
		setList:    func(r *Record, v []string) { r.MedicalHistory = v },
	},
	{
		name: "probable_diagnoses", kind: kindList,
		candidates: []string{"probable_diagnoses", "probableDiagnoses", "diagnosticos_probables", "diagnosticosProbables", "diagnoses", "diagnostico_probable", "assessment.diagnoses"},
		setList:    func(r *Record, v []string) { r.ProbableDiagnoses = v },
	},
	{
		name: "red_flags", kind: kindList,
		candidates: []string{"red_flags", "redFlags", "banderas_rojas", "banderasRojas", "alerts.red_flags", "alertas.banderas_rojas"},
		setList:    func(r *Record, v []string) { r.RedFlags = v },
	},
	{
		name: "yellow_flags", kind: kindList,
		candidates: []string{"yellow_flags", "yellowFlags", "banderas_amarillas", "banderasAmarillas", "alerts.yellow_flags", "alertas.banderas_amarillas"},
		setList:    func(r *Record, v []string) { r.YellowFlags = v },
	},
	{
		name: "suggested_physical_tests", kind: kindList,
		candidates: []string{"suggested_physical_tests", "suggestedPhysicalTests", "physical_tests", "pruebas_fisicas", "pruebasFisicas", "pruebas_sugeridas", "objective.tests"},
		setList:    func(r *Record, v []string) { r.SuggestedPhysicalTests = v },
	},
	{
		name: "suggested_treatment_plan", kind: kindList,
		candidates: []string{"suggested_treatment_plan", "suggestedTreatmentPlan", "treatment_plan", "plan_tratamiento", "planTratamiento", "plan.items", "plan"},
		setList:    func(r *Record, v []string) { r.SuggestedTreatmentPlan = v },
	},
	{
		name: "recommended_referral", kind: kindText,
		candidates: []string{"recommended_referral", "recommendedReferral", "referral", "derivacion", "derivacion_recomendada", "derivacionRecomendada"},
		setText:    func(r *Record, v string) { r.RecommendedReferral = v },
	},
	{
		name: "estimated_prognosis", kind: kindText,
		candidates: []string{"estimated_prognosis", "estimatedPrognosis", "prognosis", "pronostico", "pronostico_estimado", "pronosticoEstimado"},
		setText:    func(r *Record, v string) { r.EstimatedPrognosis = v },
	},
	{
		name: "safety_notes", kind: kindText,
		candidates: []string{"safety_notes", "safetyNotes", "notas_seguridad", "notasSeguridad", "precautions", "precauciones"},
		setText:    func(r *Record, v string) { r.SafetyNotes = v },
	},
	{
		name: "legal_risk_level", kind: kindText,
		candidates: []string{"legal_risk_level", "legalRiskLevel", "riesgo_legal", "riesgoLegal", "legal_risk", "medico_legal.riesgo", "alerts.medico_legal"},
		setText:    func(r *Record, v string) { r.LegalRiskLevel = v },
	},
}

// knownTopKeys is the set of top-level key names any candidate path can
// consume. Incoming keys outside this set are reported as schema drift.
var knownTopKeys = buildKnownTopKeys()

func buildKnownTopKeys() map[string]bool {
	out := map[string]bool{}
	for _, f := range keymap {
		for _, path := range f.candidates {
			out[pathHead(path)] = true
		}
	}
	// Envelope and section keys that legitimately appear alongside
	// canonical content.
	for _, k := range []string{"subjective", "subjetivo", "objective", "objetivo", "assessment", "evaluacion", "plan", "alerts", "alertas", "session_type", "visit_type", "pain_scale", "escala_dolor"} {
		out[k] = true
	}
	return out
}

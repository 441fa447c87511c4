package compliance

import (
	"reflect"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)
}

func TestAutoCorrect_FillsMissingRequiredFields(t *testing.T) {
	n := completeNote()
	n.Timestamp = time.Time{}
	n.RedFlagsAssessed = nil
	n.ContraindicationsChecked = nil
	n.PlanDocumented = nil

	corrected, report := AutoCorrect(n, StandardPolicy(), fixedNow)

	if report.Before.Valid {
		t.Fatalf("precondition: note should start invalid")
	}
	if !report.After.Valid {
		t.Fatalf("expected valid after correction, missing: %v", report.After.MissingRequired)
	}
	if corrected.Timestamp != fixedNow() {
		t.Fatalf("timestamp not derived: %v", corrected.Timestamp)
	}
	if corrected.RedFlagsAssessed == nil || !*corrected.RedFlagsAssessed {
		t.Fatalf("red flags assessed not defaulted")
	}
	if corrected.Record.RedFlags == nil {
		t.Fatalf("red flags list must be present after default")
	}
	if corrected.PlanDocumented == nil || !*corrected.PlanDocumented {
		t.Fatalf("plan documented not inferred from plan text")
	}
	if len(report.Applied) == 0 {
		t.Fatalf("corrections must be itemized")
	}
	for _, a := range report.Applied {
		if a.Field == "" || a.Rule == "" {
			t.Fatalf("correction entry incomplete: %+v", a)
		}
	}
}

func TestAutoCorrect_CopiesStructuredPlanIntoPlanText(t *testing.T) {
	n := completeNote()
	n.PlanText = ""
	n.PlanDocumented = nil
	n.Record.SuggestedTreatmentPlan = []string{"terapia manual", "ejercicio en casa"}

	corrected, report := AutoCorrect(n, StandardPolicy(), fixedNow)
	if corrected.PlanText != "terapia manual\nejercicio en casa" {
		t.Fatalf("plan text: %q", corrected.PlanText)
	}
	if !report.After.Valid {
		t.Fatalf("expected valid, missing: %v", report.After.MissingRequired)
	}
}

func TestAutoCorrect_CannotInventAPlan(t *testing.T) {
	n := completeNote()
	n.PlanText = ""
	n.PlanDocumented = nil
	n.Record.SuggestedTreatmentPlan = []string{}

	_, report := AutoCorrect(n, StandardPolicy(), fixedNow)
	if report.After.Valid {
		t.Fatalf("a note without plan content must stay invalid")
	}
	for _, a := range report.Applied {
		if a.Field == FieldPlanDocumented {
			t.Fatalf("plan rule fired without content: %+v", a)
		}
	}
}

func TestAutoCorrect_MonotonicCompleteness(t *testing.T) {
	notes := []Note{
		completeNote(),
		{},
		func() Note { n := completeNote(); n.Timestamp = time.Time{}; return n }(),
		func() Note { n := completeNote(); n.PatientID = ""; return n }(),
	}
	for i, n := range notes {
		_, report := AutoCorrect(n, StandardPolicy(), fixedNow)
		if report.After.CompletenessScore < report.Before.CompletenessScore {
			t.Fatalf("note %d: score dropped %d -> %d", i, report.Before.CompletenessScore, report.After.CompletenessScore)
		}
	}
}

func TestAutoCorrect_Idempotent(t *testing.T) {
	n := completeNote()
	n.Timestamp = time.Time{}
	n.RedFlagsAssessed = nil

	once, firstReport := AutoCorrect(n, StandardPolicy(), fixedNow)
	twice, secondReport := AutoCorrect(once, StandardPolicy(), fixedNow)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second pass changed the note:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	if secondReport.WasCorrected() {
		t.Fatalf("second pass applied corrections: %+v", secondReport.Applied)
	}
	if !firstReport.WasCorrected() {
		t.Fatalf("first pass should have corrected")
	}
}

func TestAutoCorrect_NeverOverwritesExplicitValues(t *testing.T) {
	n := completeNote()
	explicitFalse := false
	n.RedFlagsAssessed = &explicitFalse

	corrected, _ := AutoCorrect(n, StandardPolicy(), fixedNow)
	if corrected.RedFlagsAssessed == nil || *corrected.RedFlagsAssessed {
		t.Fatalf("explicit clinician answer was overwritten")
	}
}

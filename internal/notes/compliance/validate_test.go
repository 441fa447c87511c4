package compliance

import (
	"strings"
	"testing"
	"time"

	"github.com/fisionote/fisionote-backend/internal/notes/canonical"
)

func completeNote() Note {
	assessed := true
	checked := true
	documented := true
	rec := canonical.NewRecord()
	rec.ChiefComplaint = "dolor lumbar de 2 semanas"
	return Note{
		PatientID:                "pat-001",
		PractitionerID:           "fis-001",
		Timestamp:                time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		SessionType:              "initial",
		Record:                   rec,
		RedFlagsAssessed:         &assessed,
		ContraindicationsChecked: &checked,
		PlanDocumented:           &documented,
		PlanText:                 "terapia manual y ejercicio progresivo",
	}
}

func TestValidate_CompleteNotePasses(t *testing.T) {
	res := Validate(completeNote())
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	if res.CompletenessScore != 100 {
		t.Fatalf("expected score 100, got %d", res.CompletenessScore)
	}
	if len(res.MissingRequired) != 0 {
		t.Fatalf("unexpected missing: %v", res.MissingRequired)
	}
}

func TestValidate_MissingIdentifiersBlock(t *testing.T) {
	n := completeNote()
	n.PatientID = ""
	n.PractitionerID = "  "
	res := Validate(n)
	if res.Valid {
		t.Fatalf("expected invalid")
	}
	if len(res.MissingRequired) != 2 {
		t.Fatalf("expected 2 missing, got %v", res.MissingRequired)
	}
	if res.CompletenessScore != 80 {
		t.Fatalf("expected score 80, got %d", res.CompletenessScore)
	}
	for _, e := range res.Errors {
		if !strings.HasPrefix(e, "required field missing:") {
			t.Fatalf("unexpected error shape: %q", e)
		}
	}
}

func TestValidate_ConditionalRulesWarnButNeverBlock(t *testing.T) {
	n := completeNote()
	n.Record.ChiefComplaint = "dolor en rodilla, toma ibuprofeno, movilidad limitada"
	res := Validate(n)
	if !res.Valid {
		t.Fatalf("conditional misses must not block: %v", res.Errors)
	}
	if res.CompletenessScore != 100 {
		t.Fatalf("conditional misses must not lower the score, got %d", res.CompletenessScore)
	}
	want := []string{"pain_scale", "medication_verification", "rom_measurements"}
	if len(res.MissingConditional) != len(want) {
		t.Fatalf("missing conditional: %v", res.MissingConditional)
	}
	for i, field := range want {
		if res.MissingConditional[i] != field {
			t.Fatalf("expected %s at %d, got %v", field, i, res.MissingConditional)
		}
	}
	if len(res.Warnings) < 3 {
		t.Fatalf("expected itemized warnings, got %v", res.Warnings)
	}
}

func TestValidate_ConditionalSatisfiedNoWarnings(t *testing.T) {
	n := completeNote()
	n.Record.ChiefComplaint = "dolor cervical"
	scale := 6
	verified := true
	n.PainScale = &scale
	n.MedicationsVerified = &verified
	res := Validate(n)
	if len(res.MissingConditional) != 0 {
		t.Fatalf("unexpected conditional misses: %v", res.MissingConditional)
	}
}

func TestValidate_RegionViolationsSurfaceAsWarnings(t *testing.T) {
	n := completeNote()
	n.ObjectiveText = "Exploración lumbar y de muñeca sin hallazgos mayores"
	n.TestedRegions = []string{"lumbar"}
	res := Validate(n)
	if !res.Valid {
		t.Fatalf("region violations must not block: %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "wrist") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected wrist violation warning, got %v", res.Warnings)
	}
}

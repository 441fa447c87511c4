package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fisionote/fisionote-backend/internal/notes/canonical"
	"github.com/fisionote/fisionote-backend/internal/notes/compliance"
	"github.com/fisionote/fisionote-backend/internal/notes/prompts"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/platform/modelgen"
)

func TestMain(m *testing.M) {
	prompts.RegisterAll()
	m.Run()
}

type fakeModel struct {
	resp any
	err  error
}

func (f *fakeModel) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (any, error) {
	return f.resp, f.err
}

func (f *fakeModel) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", f.err
}

type fakeSink struct {
	entries []AuditEntry
	drifts  []canonical.Diagnostics
}

func (s *fakeSink) RecordValidation(ctx context.Context, noteID string, entry AuditEntry) {
	s.entries = append(s.entries, entry)
}

func (s *fakeSink) RecordDrift(ctx context.Context, noteID string, diag canonical.Diagnostics) {
	s.drifts = append(s.drifts, diag)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
}

func goodInput() GenerateInput {
	return GenerateInput{
		NoteID:         "note-1",
		PatientID:      "p-1",
		PractitionerID: "dr-1",
		VisitType:      "initial",
		SessionType:    "evaluacion_inicial",
		ClinicalInput:  "dolor lumbar tras levantar peso, sin irradiacion",
	}
}

func TestRunHappyPath(t *testing.T) {
	model := &fakeModel{resp: map[string]any{
		"chief_complaint":          "dolor lumbar",
		"clinical_findings":        []any{"rom lumbar limitado"},
		"red_flags":                []any{},
		"suggested_treatment_plan": []any{"calor local", "ejercicios de McKenzie"},
	}}
	sink := &fakeSink{}

	p := New(testLogger(t), model, sink, compliance.StandardPolicy()).WithClock(fixedClock)
	out, err := p.Run(context.Background(), goodInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Parse.Success {
		t.Fatalf("parse failed: %s", out.Parse.Err)
	}
	if out.Note.Record.ChiefComplaint != "dolor lumbar" {
		t.Fatalf("chief complaint = %q", out.Note.Record.ChiefComplaint)
	}
	if out.Note.PlanText != "calor local\nejercicios de McKenzie" {
		t.Fatalf("plan text = %q", out.Note.PlanText)
	}
	// Patient, practitioner, timestamp and session come from the visit,
	// so after auto-correction only clinician attestations can be missing
	// and the corrector fills those from policy.
	if !out.Validation.Valid {
		t.Fatalf("expected valid after correction, errors=%v", out.Validation.Errors)
	}
	if out.Correction == nil || !out.Correction.WasCorrected() {
		t.Fatalf("expected corrections for attestation flags")
	}
	if len(sink.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(sink.entries))
	}
	e := sink.entries[0]
	if !e.Valid || !e.WasCorrected {
		t.Fatalf("audit entry = %+v", e)
	}
	if e.CompletenessScore != 100 {
		t.Fatalf("completeness = %d", e.CompletenessScore)
	}
	if e.ParseSource != "object" {
		t.Fatalf("parse source = %q", e.ParseSource)
	}
}

func TestRunDegradesUnparseableToEmptyRecord(t *testing.T) {
	model := &fakeModel{resp: "this is not json at all {{{"}
	sink := &fakeSink{}

	p := New(testLogger(t), model, sink, compliance.StandardPolicy()).WithClock(fixedClock)
	out, err := p.Run(context.Background(), goodInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Parse.Success {
		t.Fatalf("expected parse failure")
	}
	// Something renderable always comes back.
	if out.Note.Record.RedFlags == nil {
		t.Fatalf("degraded record should keep initialized slices")
	}
	if !out.Diagnostics.Degraded {
		t.Fatalf("expected degraded diagnostics")
	}
	// The empty record cannot document a plan, so the cycle stays invalid
	// and the audit trail says so.
	if out.Validation.Valid {
		t.Fatalf("empty record should not validate")
	}
	if len(sink.entries) != 1 {
		t.Fatalf("audit entries = %d", len(sink.entries))
	}
	if sink.entries[0].Valid {
		t.Fatalf("audit entry should record the failure")
	}
}

func TestRunModelFailureClassified(t *testing.T) {
	model := &fakeModel{err: context.DeadlineExceeded}
	sink := &fakeSink{}

	p := New(testLogger(t), model, sink, compliance.StandardPolicy()).WithClock(fixedClock)
	out, err := p.Run(context.Background(), goodInput())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error chain lost: %v", err)
	}
	if out.ModelErr != modelgen.KindTimeout {
		t.Fatalf("kind = %s, want timeout", out.ModelErr)
	}
	if len(sink.entries) != 0 {
		t.Fatalf("no audit entry expected before validation, got %d", len(sink.entries))
	}
}

func TestRunReportsDrift(t *testing.T) {
	model := &fakeModel{resp: map[string]any{
		"chief_complaint":       "dolor cervical",
		"totally_novel_section": "something new the model invented",
	}}
	sink := &fakeSink{}

	p := New(testLogger(t), model, sink, compliance.StandardPolicy()).WithClock(fixedClock)
	if _, err := p.Run(context.Background(), goodInput()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.drifts) != 1 {
		t.Fatalf("drift events = %d, want 1", len(sink.drifts))
	}
	found := false
	for _, k := range sink.drifts[0].UnmatchedKeys {
		if k == "totally_novel_section" {
			found = true
		}
	}
	if !found {
		t.Fatalf("unmatched keys = %v", sink.drifts[0].UnmatchedKeys)
	}
}

func TestRunBadVisitTypePromptError(t *testing.T) {
	p := New(testLogger(t), &fakeModel{}, &fakeSink{}, compliance.StandardPolicy())
	in := goodInput()
	in.ClinicalInput = ""
	if _, err := p.Run(context.Background(), in); err == nil {
		t.Fatalf("expected prompt validation error for empty clinical input")
	}
}

func TestRevalidateEmitsAudit(t *testing.T) {
	sink := &fakeSink{}
	p := New(testLogger(t), &fakeModel{}, sink, compliance.StandardPolicy()).WithClock(fixedClock)

	yes := true
	n := compliance.Note{
		PatientID:                "p-1",
		PractitionerID:           "dr-1",
		Timestamp:                fixedClock(),
		SessionType:              "seguimiento",
		Record:                   canonical.NewRecord(),
		RedFlagsAssessed:         &yes,
		ContraindicationsChecked: &yes,
		PlanDocumented:           &yes,
		PlanText:                 "continuar ejercicios",
	}
	n.Record.ChiefComplaint = "dolor lumbar"

	res := p.Revalidate(context.Background(), "note-1", n)
	if !res.Valid {
		t.Fatalf("errors = %v", res.Errors)
	}
	if len(sink.entries) != 1 || sink.entries[0].CompletenessScore != 100 {
		t.Fatalf("audit entries = %+v", sink.entries)
	}
}

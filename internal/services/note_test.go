package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/fisionote/fisionote-backend/internal/notes/canonical"
	"github.com/fisionote/fisionote-backend/internal/notes/compliance"
	"github.com/fisionote/fisionote-backend/internal/types"
)

func TestComplianceViewRoundTrip(t *testing.T) {
	rec := canonical.NewRecord()
	rec.ChiefComplaint = "dolor de hombro"
	rec.RedFlags = []string{}
	rec.SuggestedTreatmentPlan = []string{"crioterapia", "pendulares"}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	yes := true
	row := &types.ClinicalNote{
		ID:              uuid.New(),
		PatientID:       "p-9",
		PractitionerID:  "dr-2",
		SessionType:     "evaluacion_inicial",
		PlanText:        "crioterapia\npendulares",
		CanonicalRecord: datatypes.JSON(raw),
		PlanDocumented:  &yes,
		ObjectiveText:   "abduccion limitada de hombro",
		TestedRegions:   datatypes.JSON([]byte(`["shoulder"]`)),
		CreatedAt:       time.Now().UTC(),
	}

	view := complianceView(row)
	if view.Record.ChiefComplaint != "dolor de hombro" {
		t.Fatalf("chief complaint = %q", view.Record.ChiefComplaint)
	}
	if len(view.TestedRegions) != 1 || view.TestedRegions[0] != "shoulder" {
		t.Fatalf("tested regions = %v", view.TestedRegions)
	}
	if view.PlanDocumented == nil || !*view.PlanDocumented {
		t.Fatalf("plan_documented lost in view")
	}
}

func TestComplianceViewToleratesCorruptRecord(t *testing.T) {
	row := &types.ClinicalNote{
		PatientID:       "p-1",
		CanonicalRecord: datatypes.JSON([]byte(`not json`)),
	}
	view := complianceView(row)
	if view.Record.RedFlags == nil {
		t.Fatalf("corrupt record should fall back to initialized defaults")
	}
}

func TestApplyPatchLeavesUnsetFieldsAlone(t *testing.T) {
	yes := true
	row := &types.ClinicalNote{
		PlanText:         "plan original",
		RedFlagsAssessed: &yes,
	}
	obj := "nuevo objetivo"
	applyPatch(row, DraftPatch{ObjectiveText: &obj})

	if row.ObjectiveText != "nuevo objetivo" {
		t.Fatalf("objective = %q", row.ObjectiveText)
	}
	if row.PlanText != "plan original" {
		t.Fatalf("plan overwritten: %q", row.PlanText)
	}
	if row.RedFlagsAssessed == nil || !*row.RedFlagsAssessed {
		t.Fatalf("red_flags_assessed lost")
	}
}

func TestApplyPatchReviewStampsReviewer(t *testing.T) {
	row := &types.ClinicalNote{}
	yes := true
	applyPatch(row, DraftPatch{IsReviewed: &yes, ReviewerName: "F. Torres"})

	if !row.IsReviewed || row.ReviewedAt == nil || row.ReviewerName != "F. Torres" {
		t.Fatalf("review metadata not stamped: %+v", row)
	}
}

func TestChecklistFromPlanSkipsBlankSteps(t *testing.T) {
	row := &types.ClinicalNote{ID: uuid.New(), PatientID: "p-3"}
	items := checklistFromPlan(row, []string{"TENS 15min", "  ", "estiramientos"})

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Action != "TENS 15min" || items[1].Action != "estiramientos" {
		t.Fatalf("actions = %q, %q", items[0].Action, items[1].Action)
	}
	if items[0].Status != types.ChecklistPending {
		t.Fatalf("status = %q", items[0].Status)
	}
	if items[1].Position != 2 {
		t.Fatalf("position should preserve plan order, got %d", items[1].Position)
	}
}

func TestMarshalChecklistWireShape(t *testing.T) {
	id := uuid.New()
	got := marshalChecklist([]*types.TreatmentChecklistItem{{
		ID:     id,
		Action: "fortalecimiento de core",
		Status: types.ChecklistPending,
	}})

	var wire []map[string]any
	if err := json.Unmarshal([]byte(got), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire[0]["id"] != id.String() || wire[0]["status"] != "pendiente" {
		t.Fatalf("wire = %v", wire[0])
	}
}

func TestMarshalChecklistEmpty(t *testing.T) {
	if got := marshalChecklist(nil); got != "" {
		t.Fatalf("empty checklist should render empty string, got %q", got)
	}
}

func TestSubmitTransitionsFromDraft(t *testing.T) {
	steps, err := submitTransitions(types.NoteStatusDraft)
	if err != nil {
		t.Fatalf("submitTransitions: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].from != types.NoteStatusDraft || steps[0].to != types.NoteStatusPendingSignature {
		t.Fatalf("step = %+v", steps[0])
	}
}

func TestSubmitTransitionsRecoversFailedCompliance(t *testing.T) {
	steps, err := submitTransitions(types.NoteStatusFailedCompliance)
	if err != nil {
		t.Fatalf("a gate-blocked note must be resubmittable: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].from != types.NoteStatusFailedCompliance || steps[0].to != types.NoteStatusDraft {
		t.Fatalf("recovery step = %+v", steps[0])
	}
	if steps[1].from != types.NoteStatusDraft || steps[1].to != types.NoteStatusPendingSignature {
		t.Fatalf("resubmit step = %+v", steps[1])
	}
}

func TestSubmitTransitionsRejectsTerminalAndPending(t *testing.T) {
	if _, err := submitTransitions(types.NoteStatusSigned); err == nil {
		t.Fatalf("signed notes must not be resubmittable")
	}
	if _, err := submitTransitions(types.NoteStatusPendingSignature); err == nil {
		t.Fatalf("pending notes must not be resubmittable")
	}
}

func TestNoteResultCarriesSignReasons(t *testing.T) {
	res := NoteResult{
		Note: &types.ClinicalNote{Status: types.NoteStatusFailedCompliance},
		Decision: &compliance.SignDecision{
			OK:      false,
			Reasons: []string{"note requires clinician review before signing"},
		},
	}
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), "requires clinician review") {
		t.Fatalf("blocked sign response must itemize reasons: %s", raw)
	}
}

func TestNoteMarkdownSkipsEmptySections(t *testing.T) {
	row := &types.ClinicalNote{
		SubjectiveText: "dolor lumbar desde hace 2 semanas",
		PlanText:       "ejercicios de fortalecimiento",
	}
	md := noteMarkdown(row)

	if !strings.Contains(md, "## Subjetivo") || !strings.Contains(md, "## Plan") {
		t.Fatalf("markdown missing sections:\n%s", md)
	}
	if strings.Contains(md, "## Objetivo") {
		t.Fatalf("empty section rendered:\n%s", md)
	}
}

func TestIsFollowup(t *testing.T) {
	for _, v := range []string{"followup", "follow_up", "follow-up", "seguimiento", " Seguimiento "} {
		if !isFollowup(v) {
			t.Fatalf("%q should be follow-up", v)
		}
	}
	for _, v := range []string{"initial", "inicial", ""} {
		if isFollowup(v) {
			t.Fatalf("%q should not be follow-up", v)
		}
	}
}

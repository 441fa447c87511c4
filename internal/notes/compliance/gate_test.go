package compliance

import (
	"strings"
	"testing"
)

func validResult() ValidationResult {
	return ValidationResult{Valid: true, Errors: []string{}, Warnings: []string{}, CompletenessScore: 100}
}

func TestCanSign_BlocksUnreviewedNoteRegardlessOfCompleteness(t *testing.T) {
	requires := true
	decision := CanSign(validResult(), ReviewState{RequiresReview: &requires, IsReviewed: false})
	if decision.OK {
		t.Fatalf("expected block")
	}
	found := false
	for _, r := range decision.Reasons {
		if strings.Contains(r, "review") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a review reason, got %v", decision.Reasons)
	}
}

func TestCanSign_AllowsReviewedNote(t *testing.T) {
	requires := true
	decision := CanSign(validResult(), ReviewState{RequiresReview: &requires, IsReviewed: true})
	if !decision.OK {
		t.Fatalf("expected allow, got %v", decision.Reasons)
	}
}

func TestCanSign_AllowsManuallyAuthoredNoteWithWarnings(t *testing.T) {
	res := validResult()
	res.Warnings = []string{"narrative mentions pain but no pain-scale entry is documented"}
	res.MissingConditional = []string{"pain_scale"}
	decision := CanSign(res, ReviewState{RequiresReview: nil})
	if !decision.OK {
		t.Fatalf("conditional warnings must not block signing: %v", decision.Reasons)
	}
}

func TestCanSign_ItemizesEveryFailure(t *testing.T) {
	res := ValidationResult{
		Valid: false,
		Errors: []string{
			"required field missing: patient_id",
			"required field missing: plan_text",
		},
	}
	requires := true
	decision := CanSign(res, ReviewState{RequiresReview: &requires, IsReviewed: false})
	if decision.OK {
		t.Fatalf("expected block")
	}
	if len(decision.Reasons) != 3 {
		t.Fatalf("expected all 3 reasons at once, got %v", decision.Reasons)
	}
}

func TestTransition_HappyPath(t *testing.T) {
	state, err := Transition(StateDraft, StatePendingSignature, SignDecision{})
	if err != nil || state != StatePendingSignature {
		t.Fatalf("draft -> pending: %v %v", state, err)
	}
	state, err = Transition(state, StateSigned, SignDecision{OK: true})
	if err != nil || state != StateSigned {
		t.Fatalf("pending -> signed: %v %v", state, err)
	}
}

func TestTransition_SignedIsTerminal(t *testing.T) {
	for _, to := range []State{StateDraft, StatePendingSignature, StateFailedCompliance, StateSigned} {
		if _, err := Transition(StateSigned, to, SignDecision{OK: true}); err == nil {
			t.Fatalf("signed -> %s must fail", to)
		}
	}
}

func TestTransition_BlockedSignFailsCompliance(t *testing.T) {
	decision := SignDecision{OK: false, Reasons: []string{"note requires clinician review before signing"}}
	state, err := Transition(StatePendingSignature, StateSigned, decision)
	if err == nil {
		t.Fatalf("expected error")
	}
	if state != StateFailedCompliance {
		t.Fatalf("expected failed_compliance, got %s", state)
	}
	back, err := Transition(state, StateDraft, SignDecision{})
	if err != nil || back != StateDraft {
		t.Fatalf("failed_compliance -> draft: %v %v", back, err)
	}
}

func TestTransition_RejectsInvalidMoves(t *testing.T) {
	if _, err := Transition(StateDraft, StateSigned, SignDecision{OK: true}); err == nil {
		t.Fatalf("draft -> signed must fail")
	}
}

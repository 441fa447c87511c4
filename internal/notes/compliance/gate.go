package compliance

import "fmt"

// State is a clinical note's position in the signing lifecycle.
type State string

const (
	StateDraft            State = "draft"
	StatePendingSignature State = "pending_signature"
	StateSigned           State = "signed"
	StateFailedCompliance State = "failed_compliance"
)

// SignDecision is the gate's verdict. When OK is false, Reasons carries
// every failed rule so the caller can render them all at once; the gate
// never fails with a single opaque error.
type SignDecision struct {
	OK      bool     `json:"ok"`
	Reasons []string `json:"reasons"`
}

// CanSign decides whether a note may cross pending_signature -> signed.
// Permitted iff validation reports no blocking errors AND the note either
// never required review (including requiresReview unset, the manually
// authored case) or has been reviewed. Conditional warnings never block.
func CanSign(validation ValidationResult, review ReviewState) SignDecision {
	reasons := []string{}
	reasons = append(reasons, validation.Errors...)

	if review.RequiresReview != nil && *review.RequiresReview && !review.IsReviewed {
		reasons = append(reasons, "note requires clinician review before signing")
	}

	return SignDecision{OK: len(reasons) == 0, Reasons: reasons}
}

// Transition enforces the state machine:
//
//	draft -> pending_signature
//	pending_signature -> signed            (only with an OK decision)
//	pending_signature -> failed_compliance (decision not OK)
//	failed_compliance -> draft
//
// signed is terminal. Every other move is an error.
func Transition(from, to State, decision SignDecision) (State, error) {
	if from == StateSigned {
		return from, fmt.Errorf("note is signed and immutable")
	}
	switch {
	case from == StateDraft && to == StatePendingSignature:
		return StatePendingSignature, nil
	case from == StatePendingSignature && to == StateSigned:
		if !decision.OK {
			return StateFailedCompliance, fmt.Errorf("compliance gate blocked signing: %d rule failure(s)", len(decision.Reasons))
		}
		return StateSigned, nil
	case from == StatePendingSignature && to == StateDraft:
		return StateDraft, nil
	case from == StateFailedCompliance && to == StateDraft:
		return StateDraft, nil
	default:
		return from, fmt.Errorf("invalid transition %s -> %s", from, to)
	}
}

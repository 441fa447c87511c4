package prompts

import "strings"

type PromptName string

const (
	// Note synthesis
	PromptNoteInitial  PromptName = "note_initial"
	PromptNoteFollowup PromptName = "note_followup"
)

// ForVisitType maps a visit type onto the prompt that serves it. Visit
// types arrive from clients in mixed case and both languages, so the
// match is normalized; anything unrecognized gets the initial prompt.
func ForVisitType(visitType string) PromptName {
	switch strings.ToLower(strings.TrimSpace(visitType)) {
	case "followup", "follow_up", "follow-up", "seguimiento":
		return PromptNoteFollowup
	}
	return PromptNoteInitial
}

// NoAlertsSentinel is the explicit "no alerts" marker the model must emit
// instead of omitting or emptying the alerts field, so downstream parsing
// never has to guess whether alerts were considered.
const NoAlertsSentinel = "sin_alertas"

package compliance

import (
	"time"

	"github.com/fisionote/fisionote-backend/internal/notes/canonical"
)

// Note is the validation view of a clinical note: the canonical record
// plus the regulatory envelope around it (identifiers, session metadata,
// the clinician's explicit check flags and structured entries). Pointer
// booleans distinguish "explicitly false" from "never answered".
type Note struct {
	PatientID      string
	PractitionerID string
	Timestamp      time.Time
	SessionType    string

	Record canonical.Record

	RedFlagsAssessed         *bool
	ContraindicationsChecked *bool
	PlanDocumented           *bool
	PlanText                 string

	// Conditional entries, expected only when the narrative calls for them.
	PainScale           *int
	MedicationsVerified *bool
	ROMMeasurements     []string

	// Objective narrative and the regions actually tested, for the
	// region cross-check.
	ObjectiveText string
	TestedRegions []string
}

// ReviewState carries the clinician-review metadata the compliance gate
// consumes. RequiresReview is nil for manually authored notes.
type ReviewState struct {
	RequiresReview *bool
	IsReviewed     bool
	AIGenerated    bool
	ReviewedBy     string
	ReviewerName   string
	ReviewedAt     *time.Time
}

// Context is assembled fresh at save/sign time from the current note and
// identity; it is never persisted on its own.
type Context struct {
	PatientID    string
	ClinicianID  string
	NoteMarkdown string
	CreatedAtISO string
}

func NewContext(patientID, clinicianID, noteMarkdown string, now time.Time) Context {
	return Context{
		PatientID:    patientID,
		ClinicianID:  clinicianID,
		NoteMarkdown: noteMarkdown,
		CreatedAtISO: now.UTC().Format(time.RFC3339),
	}
}

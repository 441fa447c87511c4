package types

import (
	"time"

	"github.com/google/uuid"
)

// Checklist item states as emitted by the follow-up prompt.
const (
	ChecklistPending = "pendiente"
	ChecklistDone    = "realizado"
	ChecklistSkipped = "omitido"
)

// TreatmentChecklistItem is one atomic plan action carried between
// sessions. Follow-up notes update status per item instead of rewriting
// the plan narrative.
type TreatmentChecklistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID    uuid.UUID `gorm:"type:uuid;not null;index" json:"note_id"`
	PatientID string    `gorm:"column:patient_id;not null;index" json:"patient_id"`
	Position  int       `gorm:"column:position;not null" json:"position"`
	Action    string    `gorm:"column:action;not null" json:"action"`
	Status    string    `gorm:"column:status;not null;default:pendiente" json:"status"`
	Notes     string    `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TreatmentChecklistItem) TableName() string {
	return "treatment_checklist_item"
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NoteValidationLog is one row per validation pass over a note. Rows are
// append-only so the audit trail reconstructs the full history of a
// note's compliance state.
type NoteValidationLog struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"note_id"`
	Valid             bool           `gorm:"column:valid;not null" json:"valid"`
	CompletenessScore int            `gorm:"column:completeness_score;not null" json:"completeness_score"`
	WasCorrected      bool           `gorm:"column:was_corrected;not null" json:"was_corrected"`
	Errors            datatypes.JSON `gorm:"type:jsonb;column:errors" json:"errors"`
	Warnings          datatypes.JSON `gorm:"type:jsonb;column:warnings" json:"warnings"`
	MissingFields     datatypes.JSON `gorm:"type:jsonb;column:missing_fields" json:"missing_fields"`
	ParseSource       string         `gorm:"column:parse_source" json:"parse_source,omitempty"`
	KeymapVersion     int            `gorm:"column:keymap_version" json:"keymap_version,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;index" json:"created_at"`
}

func (NoteValidationLog) TableName() string {
	return "note_validation_log"
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SignatureEvent is the immutable record of one sign attempt. Both
// allowed and blocked attempts are written; a blocked attempt keeps the
// reasons the gate produced.
type SignatureEvent struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"note_id"`
	SignedBy     string         `gorm:"column:signed_by;not null" json:"signed_by"`
	Allowed      bool           `gorm:"column:allowed;not null" json:"allowed"`
	Reasons      datatypes.JSON `gorm:"type:jsonb;column:reasons" json:"reasons"`
	NoteSnapshot datatypes.JSON `gorm:"type:jsonb;column:note_snapshot" json:"note_snapshot"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (SignatureEvent) TableName() string {
	return "signature_event"
}

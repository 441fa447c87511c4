package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Note lifecycle states. Signed is terminal.
const (
	NoteStatusDraft            = "draft"
	NoteStatusPendingSignature = "pending_signature"
	NoteStatusSigned           = "signed"
	NoteStatusFailedCompliance = "failed_compliance"
)

type ClinicalNote struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID      string    `gorm:"column:patient_id;not null;index" json:"patient_id"`
	PractitionerID string    `gorm:"column:practitioner_id;not null;index" json:"practitioner_id"`
	VisitType      string    `gorm:"column:visit_type;not null" json:"visit_type"`
	SessionType    string    `gorm:"column:session_type;not null" json:"session_type"`
	Status         string    `gorm:"column:status;not null;default:draft;index" json:"status"`

	// Clinician-facing SOAP narrative. ObjectiveText feeds the region
	// cross-check; PlanText is the regulatory plan field.
	SubjectiveText string `gorm:"column:subjective_text" json:"subjective_text"`
	ObjectiveText  string `gorm:"column:objective_text" json:"objective_text"`
	AssessmentText string `gorm:"column:assessment_text" json:"assessment_text"`
	PlanText       string `gorm:"column:plan_text" json:"plan_text"`

	// CanonicalRecord is the normalized synthesis output, stored as-is so
	// revalidation never depends on the model being reachable.
	CanonicalRecord datatypes.JSON `gorm:"type:jsonb;column:canonical_record" json:"canonical_record"`

	RedFlagsAssessed         *bool          `gorm:"column:red_flags_assessed" json:"red_flags_assessed,omitempty"`
	ContraindicationsChecked *bool          `gorm:"column:contraindications_checked" json:"contraindications_checked,omitempty"`
	PlanDocumented           *bool          `gorm:"column:plan_documented" json:"plan_documented,omitempty"`
	PainScale                *int           `gorm:"column:pain_scale" json:"pain_scale,omitempty"`
	MedicationsVerified      *bool          `gorm:"column:medications_verified" json:"medications_verified,omitempty"`
	ROMMeasurements          datatypes.JSON `gorm:"type:jsonb;column:rom_measurements" json:"rom_measurements"`
	TestedRegions            datatypes.JSON `gorm:"type:jsonb;column:tested_regions" json:"tested_regions"`

	AIGenerated    bool       `gorm:"column:ai_generated;not null;default:false" json:"ai_generated"`
	RequiresReview *bool      `gorm:"column:requires_review" json:"requires_review,omitempty"`
	IsReviewed     bool       `gorm:"column:is_reviewed;not null;default:false" json:"is_reviewed"`
	ReviewedBy     string     `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewerName   string     `gorm:"column:reviewer_name" json:"reviewer_name,omitempty"`
	ReviewedAt     *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`

	SignedBy string     `gorm:"column:signed_by" json:"signed_by,omitempty"`
	SignedAt *time.Time `gorm:"column:signed_at" json:"signed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ClinicalNote) TableName() string {
	return "clinical_note"
}

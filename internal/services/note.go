package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/notes/canonical"
	"github.com/fisionote/fisionote-backend/internal/notes/compliance"
	"github.com/fisionote/fisionote-backend/internal/notes/pipeline"
	"github.com/fisionote/fisionote-backend/internal/notes/prompts"
	"github.com/fisionote/fisionote-backend/internal/platform/apierr"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/repos"
	"github.com/fisionote/fisionote-backend/internal/types"
)

// signLockTTL bounds how long a crashed sign attempt can hold a note.
const signLockTTL = 15 * time.Second

var ErrSignInProgress = errors.New("another sign attempt is in progress")

// GenerateRequest is the visit context a practitioner submits to start a
// note. PriorNoteMD and the checklist are resolved server-side for
// follow-ups when left empty.
type GenerateRequest struct {
	PatientID      string `json:"patient_id"`
	VisitType      string `json:"visit_type"`
	SessionType    string `json:"session_type"`
	ClinicalInput  string `json:"clinical_input"`
	PriorNoteMD    string `json:"prior_note_md,omitempty"`
	PatientContext string `json:"patient_context,omitempty"`
}

// DraftPatch carries the clinician-editable fields of a draft. Pointer
// fields distinguish "leave unchanged" from "set".
type DraftPatch struct {
	SubjectiveText           *string  `json:"subjective_text,omitempty"`
	ObjectiveText            *string  `json:"objective_text,omitempty"`
	AssessmentText           *string  `json:"assessment_text,omitempty"`
	PlanText                 *string  `json:"plan_text,omitempty"`
	RedFlagsAssessed         *bool    `json:"red_flags_assessed,omitempty"`
	ContraindicationsChecked *bool    `json:"contraindications_checked,omitempty"`
	PlanDocumented           *bool    `json:"plan_documented,omitempty"`
	PainScale                *int     `json:"pain_scale,omitempty"`
	MedicationsVerified      *bool    `json:"medications_verified,omitempty"`
	ROMMeasurements          []string `json:"rom_measurements,omitempty"`
	TestedRegions            []string `json:"tested_regions,omitempty"`
	IsReviewed               *bool    `json:"is_reviewed,omitempty"`
	ReviewerName             string   `json:"reviewer_name,omitempty"`
}

// NoteResult bundles a persisted note with its latest validation outcome.
type NoteResult struct {
	Note       *types.ClinicalNote             `json:"note"`
	Validation compliance.ValidationResult     `json:"validation"`
	Correction *compliance.CorrectionReport    `json:"correction,omitempty"`
	Decision   *compliance.SignDecision        `json:"decision,omitempty"`
	Checklist  []*types.TreatmentChecklistItem `json:"checklist,omitempty"`
}

type NoteService interface {
	Generate(ctx context.Context, practitionerID string, req GenerateRequest) (*NoteResult, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ClinicalNote, error)
	Validate(ctx context.Context, id uuid.UUID) (compliance.ValidationResult, error)
	SaveDraft(ctx context.Context, id uuid.UUID, patch DraftPatch) (*NoteResult, error)
	Submit(ctx context.Context, id uuid.UUID) (*types.ClinicalNote, error)
	Sign(ctx context.Context, id uuid.UUID, signerID string) (*NoteResult, error)
}

type noteService struct {
	db         *gorm.DB
	log        *logger.Logger
	rdb        *redis.Client
	pipe       *pipeline.Pipeline
	notes      repos.ClinicalNoteRepo
	checklist  repos.ChecklistItemRepo
	signatures repos.SignatureEventRepo
}

func NewNoteService(
	db *gorm.DB,
	baseLog *logger.Logger,
	rdb *redis.Client,
	pipe *pipeline.Pipeline,
	notes repos.ClinicalNoteRepo,
	checklist repos.ChecklistItemRepo,
	signatures repos.SignatureEventRepo,
) NoteService {
	return &noteService{
		db:         db,
		log:        baseLog.With("service", "NoteService"),
		rdb:        rdb,
		pipe:       pipe,
		notes:      notes,
		checklist:  checklist,
		signatures: signatures,
	}
}

func (s *noteService) Generate(ctx context.Context, practitionerID string, req GenerateRequest) (*NoteResult, error) {
	if strings.TrimSpace(req.PatientID) == "" {
		return nil, apierr.BadRequest("MISSING_PATIENT_ID", fmt.Errorf("patient_id is required"))
	}
	if strings.TrimSpace(req.ClinicalInput) == "" {
		return nil, apierr.BadRequest("MISSING_CLINICAL_INPUT", fmt.Errorf("clinical_input is required"))
	}

	noteID := uuid.New()
	checklistJSON := ""
	if isFollowup(req.VisitType) {
		open, err := s.checklist.ListOpenByPatient(ctx, nil, req.PatientID)
		if err != nil {
			return nil, err
		}
		checklistJSON = marshalChecklist(open)
	}

	out, err := s.pipe.Run(ctx, pipeline.GenerateInput{
		NoteID:         noteID.String(),
		PatientID:      req.PatientID,
		PractitionerID: practitionerID,
		VisitType:      req.VisitType,
		SessionType:    req.SessionType,
		ClinicalInput:  req.ClinicalInput,
		PriorNoteMD:    req.PriorNoteMD,
		ChecklistJSON:  checklistJSON,
		PatientContext: req.PatientContext,
	})
	if err != nil {
		return nil, err
	}

	recordJSON, err := json.Marshal(out.Note.Record)
	if err != nil {
		return nil, fmt.Errorf("marshal canonical record: %w", err)
	}

	requiresReview := true
	row := &types.ClinicalNote{
		ID:                       noteID,
		PatientID:                req.PatientID,
		PractitionerID:           practitionerID,
		VisitType:                req.VisitType,
		SessionType:              req.SessionType,
		Status:                   types.NoteStatusDraft,
		PlanText:                 out.Note.PlanText,
		CanonicalRecord:          datatypes.JSON(recordJSON),
		RedFlagsAssessed:         out.Note.RedFlagsAssessed,
		ContraindicationsChecked: out.Note.ContraindicationsChecked,
		PlanDocumented:           out.Note.PlanDocumented,
		AIGenerated:              true,
		RequiresReview:           &requiresReview,
	}

	var items []*types.TreatmentChecklistItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.notes.Create(ctx, tx, row); err != nil {
			return err
		}
		items = checklistFromPlan(row, out.Note.Record.SuggestedTreatmentPlan)
		if _, err := s.checklist.CreateMany(ctx, tx, items); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &NoteResult{
		Note:       row,
		Validation: out.Validation,
		Correction: out.Correction,
		Checklist:  items,
	}, nil
}

func (s *noteService) Get(ctx context.Context, id uuid.UUID) (*types.ClinicalNote, error) {
	row, err := s.notes.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("NOTE_NOT_FOUND", err)
		}
		return nil, err
	}
	return row, nil
}

func (s *noteService) Validate(ctx context.Context, id uuid.UUID) (compliance.ValidationResult, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return compliance.ValidationResult{}, err
	}
	return s.pipe.Revalidate(ctx, id.String(), complianceView(row)), nil
}

func (s *noteService) SaveDraft(ctx context.Context, id uuid.UUID, patch DraftPatch) (*NoteResult, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status == types.NoteStatusSigned {
		return nil, apierr.Conflict("NOTE_SIGNED", fmt.Errorf("signed notes are immutable"))
	}

	applyPatch(row, patch)
	if _, err := s.notes.Update(ctx, nil, row); err != nil {
		return nil, err
	}

	res := s.pipe.Revalidate(ctx, id.String(), complianceView(row))
	return &NoteResult{Note: row, Validation: res}, nil
}

func (s *noteService) Submit(ctx context.Context, id uuid.UUID) (*types.ClinicalNote, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	steps, err := submitTransitions(row.Status)
	if err != nil {
		return nil, apierr.Conflict("INVALID_TRANSITION", err)
	}

	for _, step := range steps {
		if err := s.notes.UpdateStatusIf(ctx, nil, id, step.from, step.to, nil); err != nil {
			if errors.Is(err, repos.ErrStaleStatus) {
				return nil, apierr.Conflict("STALE_STATUS", err)
			}
			return nil, err
		}
		row.Status = step.to
	}
	return row, nil
}

type statusStep struct {
	from string
	to   string
}

// submitTransitions resolves the chain of state-machine moves that take a
// note to pending_signature. A note blocked by the gate first returns
// through the failed_compliance -> draft recovery transition, so one
// failed sign never strands the note.
func submitTransitions(status string) ([]statusStep, error) {
	from := compliance.State(status)
	steps := []statusStep{}

	if from == compliance.StateFailedCompliance {
		next, err := compliance.Transition(from, compliance.StateDraft, compliance.SignDecision{})
		if err != nil {
			return nil, err
		}
		steps = append(steps, statusStep{from: string(from), to: string(next)})
		from = next
	}

	next, err := compliance.Transition(from, compliance.StatePendingSignature, compliance.SignDecision{})
	if err != nil {
		return nil, err
	}
	steps = append(steps, statusStep{from: string(from), to: string(next)})
	return steps, nil
}

// Sign serializes concurrent sign attempts per note with a redis SetNX
// lock, snapshots the note inside the lock, runs the compliance gate and
// records the attempt whether or not it was allowed.
func (s *noteService) Sign(ctx context.Context, id uuid.UUID, signerID string) (*NoteResult, error) {
	lockKey := "fisionote:sign:" + id.String()
	ok, err := s.rdb.SetNX(ctx, lockKey, signerID, signLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire sign lock: %w", err)
	}
	if !ok {
		return nil, apierr.Conflict("SIGN_IN_PROGRESS", ErrSignInProgress)
	}
	defer s.rdb.Del(context.WithoutCancel(ctx), lockKey)

	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != types.NoteStatusPendingSignature {
		return nil, apierr.Conflict("NOT_PENDING", fmt.Errorf("note is %s, expected %s", row.Status, types.NoteStatusPendingSignature))
	}

	validation := compliance.Validate(complianceView(row))
	decision := compliance.CanSign(validation, reviewView(row))
	next, transitionErr := compliance.Transition(compliance.StatePendingSignature, compliance.StateSigned, decision)

	now := time.Now().UTC()
	snapshot, _ := json.Marshal(struct {
		Note    *types.ClinicalNote `json:"note"`
		Context compliance.Context  `json:"context"`
	}{
		Note:    row,
		Context: compliance.NewContext(row.PatientID, signerID, noteMarkdown(row), now),
	})
	reasons, _ := json.Marshal(decision.Reasons)
	event := &types.SignatureEvent{
		NoteID:       id,
		SignedBy:     signerID,
		Allowed:      decision.OK,
		Reasons:      datatypes.JSON(reasons),
		NoteSnapshot: datatypes.JSON(snapshot),
		CreatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.signatures.Create(ctx, tx, event); err != nil {
			return err
		}
		extra := map[string]any{}
		if next == compliance.StateSigned {
			extra["signed_by"] = signerID
			extra["signed_at"] = now
		}
		return s.notes.UpdateStatusIf(ctx, tx, id, types.NoteStatusPendingSignature, string(next), extra)
	})
	if err != nil {
		if errors.Is(err, repos.ErrStaleStatus) {
			return nil, apierr.Conflict("STALE_STATUS", err)
		}
		return nil, err
	}

	row.Status = string(next)
	if next == compliance.StateSigned {
		row.SignedBy = signerID
		row.SignedAt = &now
	}
	if transitionErr != nil {
		s.log.Warn("sign blocked",
			"note_id", id.String(),
			"reasons", decision.Reasons,
		)
	}
	return &NoteResult{Note: row, Validation: validation, Decision: &decision}, nil
}

func applyPatch(row *types.ClinicalNote, patch DraftPatch) {
	if patch.SubjectiveText != nil {
		row.SubjectiveText = *patch.SubjectiveText
	}
	if patch.ObjectiveText != nil {
		row.ObjectiveText = *patch.ObjectiveText
	}
	if patch.AssessmentText != nil {
		row.AssessmentText = *patch.AssessmentText
	}
	if patch.PlanText != nil {
		row.PlanText = *patch.PlanText
	}
	if patch.RedFlagsAssessed != nil {
		row.RedFlagsAssessed = patch.RedFlagsAssessed
	}
	if patch.ContraindicationsChecked != nil {
		row.ContraindicationsChecked = patch.ContraindicationsChecked
	}
	if patch.PlanDocumented != nil {
		row.PlanDocumented = patch.PlanDocumented
	}
	if patch.PainScale != nil {
		row.PainScale = patch.PainScale
	}
	if patch.MedicationsVerified != nil {
		row.MedicationsVerified = patch.MedicationsVerified
	}
	if patch.ROMMeasurements != nil {
		b, _ := json.Marshal(patch.ROMMeasurements)
		row.ROMMeasurements = datatypes.JSON(b)
	}
	if patch.TestedRegions != nil {
		b, _ := json.Marshal(patch.TestedRegions)
		row.TestedRegions = datatypes.JSON(b)
	}
	if patch.IsReviewed != nil {
		row.IsReviewed = *patch.IsReviewed
		if *patch.IsReviewed {
			now := time.Now().UTC()
			row.ReviewedAt = &now
			row.ReviewerName = patch.ReviewerName
		}
	}
}

// complianceView rebuilds the validation view from the stored row, so
// revalidation never depends on the model being reachable.
func complianceView(row *types.ClinicalNote) compliance.Note {
	rec := canonical.NewRecord()
	if len(row.CanonicalRecord) > 0 {
		_ = json.Unmarshal(row.CanonicalRecord, &rec)
	}
	return compliance.Note{
		PatientID:                row.PatientID,
		PractitionerID:           row.PractitionerID,
		Timestamp:                row.CreatedAt,
		SessionType:              row.SessionType,
		Record:                   rec,
		RedFlagsAssessed:         row.RedFlagsAssessed,
		ContraindicationsChecked: row.ContraindicationsChecked,
		PlanDocumented:           row.PlanDocumented,
		PlanText:                 row.PlanText,
		PainScale:                row.PainScale,
		MedicationsVerified:      row.MedicationsVerified,
		ROMMeasurements:          stringList(row.ROMMeasurements),
		ObjectiveText:            row.ObjectiveText,
		TestedRegions:            stringList(row.TestedRegions),
	}
}

func reviewView(row *types.ClinicalNote) compliance.ReviewState {
	return compliance.ReviewState{
		RequiresReview: row.RequiresReview,
		IsReviewed:     row.IsReviewed,
		AIGenerated:    row.AIGenerated,
		ReviewedBy:     row.ReviewedBy,
		ReviewerName:   row.ReviewerName,
		ReviewedAt:     row.ReviewedAt,
	}
}

func stringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	_ = json.Unmarshal(raw, &out)
	return out
}

func checklistFromPlan(row *types.ClinicalNote, plan []string) []*types.TreatmentChecklistItem {
	items := make([]*types.TreatmentChecklistItem, 0, len(plan))
	for i, action := range plan {
		action = strings.TrimSpace(action)
		if action == "" {
			continue
		}
		items = append(items, &types.TreatmentChecklistItem{
			NoteID:    row.ID,
			PatientID: row.PatientID,
			Position:  i,
			Action:    action,
			Status:    types.ChecklistPending,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		})
	}
	return items
}

func marshalChecklist(items []*types.TreatmentChecklistItem) string {
	if len(items) == 0 {
		return ""
	}
	type wireItem struct {
		ID     string `json:"id"`
		Action string `json:"action"`
		Status string `json:"status"`
		Notes  string `json:"notes,omitempty"`
	}
	wire := make([]wireItem, 0, len(items))
	for _, item := range items {
		wire = append(wire, wireItem{
			ID:     item.ID.String(),
			Action: item.Action,
			Status: item.Status,
			Notes:  item.Notes,
		})
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return ""
	}
	return string(b)
}

// noteMarkdown renders the SOAP sections present on the note. Empty
// sections are skipped so a draft renders without placeholder headers.
func noteMarkdown(row *types.ClinicalNote) string {
	sections := []struct {
		header string
		body   string
	}{
		{"## Subjetivo", row.SubjectiveText},
		{"## Objetivo", row.ObjectiveText},
		{"## Evaluacion", row.AssessmentText},
		{"## Plan", row.PlanText},
	}
	var b strings.Builder
	for _, s := range sections {
		if strings.TrimSpace(s.body) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.header)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(s.body))
	}
	return b.String()
}

func isFollowup(visitType string) bool {
	return prompts.ForVisitType(visitType) == prompts.PromptNoteFollowup
}

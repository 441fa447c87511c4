package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/types"
)

// ErrStaleStatus is returned when a conditional status update matched no
// row, meaning the note moved to another state underneath the caller.
var ErrStaleStatus = errors.New("note status changed concurrently")

type ClinicalNoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, note *types.ClinicalNote) (*types.ClinicalNote, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ClinicalNote, error)
	Update(ctx context.Context, tx *gorm.DB, note *types.ClinicalNote) (*types.ClinicalNote, error)
	ListByPatient(ctx context.Context, tx *gorm.DB, patientID string, limit int) ([]*types.ClinicalNote, error)
	// UpdateStatusIf flips status only when the stored status still equals
	// from; sets extra columns in the same statement. ErrStaleStatus when
	// another writer won.
	UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to string, extra map[string]any) error
}

type clinicalNoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClinicalNoteRepo(db *gorm.DB, baseLog *logger.Logger) ClinicalNoteRepo {
	return &clinicalNoteRepo{db: db, log: baseLog.With("repo", "ClinicalNoteRepo")}
}

func (r *clinicalNoteRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *clinicalNoteRepo) Create(ctx context.Context, tx *gorm.DB, note *types.ClinicalNote) (*types.ClinicalNote, error) {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.Status == "" {
		note.Status = types.NoteStatusDraft
	}
	if err := r.conn(tx).WithContext(ctx).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (r *clinicalNoteRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ClinicalNote, error) {
	var note types.ClinicalNote
	if err := r.conn(tx).WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *clinicalNoteRepo) Update(ctx context.Context, tx *gorm.DB, note *types.ClinicalNote) (*types.ClinicalNote, error) {
	if err := r.conn(tx).WithContext(ctx).Save(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (r *clinicalNoteRepo) ListByPatient(ctx context.Context, tx *gorm.DB, patientID string, limit int) ([]*types.ClinicalNote, error) {
	if limit <= 0 {
		limit = 50
	}
	var notes []*types.ClinicalNote
	err := r.conn(tx).WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *clinicalNoteRepo) UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to string, extra map[string]any) error {
	updates := map[string]any{"status": to, "updated_at": time.Now().UTC()}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.conn(tx).WithContext(ctx).
		Model(&types.ClinicalNote{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

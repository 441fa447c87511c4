package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/types"
)

type ChecklistItemRepo interface {
	CreateMany(ctx context.Context, tx *gorm.DB, items []*types.TreatmentChecklistItem) ([]*types.TreatmentChecklistItem, error)
	ListByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) ([]*types.TreatmentChecklistItem, error)
	ListOpenByPatient(ctx context.Context, tx *gorm.DB, patientID string) ([]*types.TreatmentChecklistItem, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, notes string) error
}

type checklistItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChecklistItemRepo(db *gorm.DB, baseLog *logger.Logger) ChecklistItemRepo {
	return &checklistItemRepo{db: db, log: baseLog.With("repo", "ChecklistItemRepo")}
}

func (r *checklistItemRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *checklistItemRepo) CreateMany(ctx context.Context, tx *gorm.DB, items []*types.TreatmentChecklistItem) ([]*types.TreatmentChecklistItem, error) {
	if len(items) == 0 {
		return []*types.TreatmentChecklistItem{}, nil
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.Status == "" {
			item.Status = types.ChecklistPending
		}
	}
	if err := r.conn(tx).WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *checklistItemRepo) ListByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) ([]*types.TreatmentChecklistItem, error) {
	var items []*types.TreatmentChecklistItem
	err := r.conn(tx).WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *checklistItemRepo) ListOpenByPatient(ctx context.Context, tx *gorm.DB, patientID string) ([]*types.TreatmentChecklistItem, error) {
	var items []*types.TreatmentChecklistItem
	err := r.conn(tx).WithContext(ctx).
		Where("patient_id = ? AND status = ?", patientID, types.ChecklistPending).
		Order("created_at ASC, position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *checklistItemRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, notes string) error {
	updates := map[string]any{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}
	return r.conn(tx).WithContext(ctx).
		Model(&types.TreatmentChecklistItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

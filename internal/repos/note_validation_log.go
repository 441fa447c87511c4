package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/types"
)

type NoteValidationLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.NoteValidationLog) (*types.NoteValidationLog, error)
	ListByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID, limit int) ([]*types.NoteValidationLog, error)
}

type noteValidationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteValidationLogRepo(db *gorm.DB, baseLog *logger.Logger) NoteValidationLogRepo {
	return &noteValidationLogRepo{db: db, log: baseLog.With("repo", "NoteValidationLogRepo")}
}

func (r *noteValidationLogRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *noteValidationLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.NoteValidationLog) (*types.NoteValidationLog, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.conn(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *noteValidationLogRepo) ListByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID, limit int) ([]*types.NoteValidationLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []*types.NoteValidationLog
	err := r.conn(tx).WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

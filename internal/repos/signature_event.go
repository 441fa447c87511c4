package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/types"
)

type SignatureEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *types.SignatureEvent) (*types.SignatureEvent, error)
	ListByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) ([]*types.SignatureEvent, error)
}

type signatureEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSignatureEventRepo(db *gorm.DB, baseLog *logger.Logger) SignatureEventRepo {
	return &signatureEventRepo{db: db, log: baseLog.With("repo", "SignatureEventRepo")}
}

func (r *signatureEventRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *signatureEventRepo) Create(ctx context.Context, tx *gorm.DB, event *types.SignatureEvent) (*types.SignatureEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := r.conn(tx).WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *signatureEventRepo) ListByNote(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) ([]*types.SignatureEvent, error) {
	var events []*types.SignatureEvent
	err := r.conn(tx).WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

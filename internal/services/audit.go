package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/notes/canonical"
	"github.com/fisionote/fisionote-backend/internal/notes/pipeline"
	"github.com/fisionote/fisionote-backend/internal/observability"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/repos"
	"github.com/fisionote/fisionote-backend/internal/types"
)

// AuditService is the pipeline's audit sink: every validation pass lands
// as an append-only row, and pipeline health counters go to redis. Write
// failures are logged, never propagated; audit must not break note flow.
type AuditService interface {
	pipeline.Sink
	History(ctx context.Context, noteID uuid.UUID, limit int) ([]*types.NoteValidationLog, error)
}

type auditService struct {
	db      *gorm.DB
	log     *logger.Logger
	logs    repos.NoteValidationLogRepo
	metrics *observability.Metrics
}

func NewAuditService(db *gorm.DB, baseLog *logger.Logger, logs repos.NoteValidationLogRepo, metrics *observability.Metrics) AuditService {
	return &auditService{
		db:      db,
		log:     baseLog.With("service", "AuditService"),
		logs:    logs,
		metrics: metrics,
	}
}

func (s *auditService) RecordValidation(ctx context.Context, noteID string, entry pipeline.AuditEntry) {
	id, err := uuid.Parse(noteID)
	if err != nil {
		s.log.Warn("audit entry with unparseable note id", "note_id", noteID)
		return
	}

	row := &types.NoteValidationLog{
		NoteID:            id,
		Valid:             entry.Valid,
		CompletenessScore: entry.CompletenessScore,
		WasCorrected:      entry.WasCorrected,
		Errors:            mustJSON(entry.Errors),
		Warnings:          mustJSON(entry.Warnings),
		MissingFields:     mustJSON(entry.MissingFields),
		ParseSource:       entry.ParseSource,
		KeymapVersion:     entry.KeymapVersion,
		CreatedAt:         entry.Timestamp,
	}
	if _, err := s.logs.Create(ctx, nil, row); err != nil {
		s.log.Error("validation log write failed", "note_id", noteID, "error", err)
	}

	if s.metrics != nil {
		if entry.ParseSource != "" {
			s.metrics.IncrParse(ctx, entry.ParseSource)
		}
		s.metrics.IncrValidation(ctx, entry.Valid)
		if entry.WasCorrected {
			s.metrics.IncrCorrection(ctx)
		}
	}
}

func (s *auditService) RecordDrift(ctx context.Context, noteID string, diag canonical.Diagnostics) {
	s.log.Warn("canonical keymap drift",
		"note_id", noteID,
		"keymap_version", diag.KeymapVersion,
		"unmatched_keys", diag.UnmatchedKeys,
	)
	if s.metrics != nil {
		s.metrics.RecordDriftKeys(ctx, diag.UnmatchedKeys)
	}
}

func (s *auditService) History(ctx context.Context, noteID uuid.UUID, limit int) ([]*types.NoteValidationLog, error) {
	return s.logs.ListByNote(ctx, nil, noteID, limit)
}

func mustJSON(v []string) datatypes.JSON {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

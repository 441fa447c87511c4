package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/notes/compliance"
	"github.com/fisionote/fisionote-backend/internal/notes/pipeline"
	"github.com/fisionote/fisionote-backend/internal/observability"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/platform/modelgen"
	"github.com/fisionote/fisionote-backend/internal/services"
)

type Services struct {
	Notes services.NoteService
	Audit services.AuditService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, rdb *redis.Client, metrics *observability.Metrics, reposet Repos) (Services, error) {
	log.Info("wiring services")

	model, err := modelgen.NewClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init model client: %w", err)
	}

	policy, err := compliance.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		return Services{}, fmt.Errorf("load compliance policy: %w", err)
	}

	audit := services.NewAuditService(db, log, reposet.Validation, metrics)
	pipe := pipeline.New(log, model, audit, policy)

	notes := services.NewNoteService(db, log, rdb, pipe, reposet.Notes, reposet.Checklist, reposet.Signatures)

	return Services{Notes: notes, Audit: audit}, nil
}

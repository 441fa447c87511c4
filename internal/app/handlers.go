package app

import (
	"github.com/fisionote/fisionote-backend/internal/handlers"
	"github.com/fisionote/fisionote-backend/internal/observability"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
)

type Handlers struct {
	Notes   *handlers.NoteHandler
	Metrics *handlers.MetricsHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, metrics *observability.Metrics) Handlers {
	log.Info("wiring handlers")
	return Handlers{
		Notes:   handlers.NewNoteHandler(log, serviceset.Notes, serviceset.Audit),
		Metrics: handlers.NewMetricsHandler(log, metrics),
	}
}

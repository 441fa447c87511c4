package app

import (
	"github.com/gin-gonic/gin"

	"github.com/fisionote/fisionote-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Mode:           cfg.Mode,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthMiddleware: middlewareset.Auth,
		NoteHandler:    handlerset.Notes,
		MetricsHandler: handlerset.Metrics,
	})
}

package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/fisionote/fisionote-backend/internal/handlers"
	"github.com/fisionote/fisionote-backend/internal/middleware"
)

type RouterConfig struct {
	Mode           string
	AllowedOrigins []string
	AuthMiddleware *middleware.AuthMiddleware
	NoteHandler    *handlers.NoteHandler
	MetricsHandler *handlers.MetricsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if strings.EqualFold(cfg.Mode, "prod") || strings.EqualFold(cfg.Mode, "production") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware("fisionote"))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	notes := api.Group("/notes")
	{
		notes.POST("/generate", cfg.NoteHandler.Generate)
		notes.GET("/:id", cfg.NoteHandler.Get)
		notes.POST("/:id/validate", cfg.NoteHandler.Validate)
		notes.POST("/:id/save", cfg.NoteHandler.Save)
		notes.POST("/:id/submit", cfg.NoteHandler.Submit)
		notes.POST("/:id/sign", cfg.NoteHandler.Sign)
		notes.GET("/:id/audit", cfg.NoteHandler.Audit)
	}

	api.GET("/metrics", cfg.MetricsHandler.Snapshot)

	return router
}

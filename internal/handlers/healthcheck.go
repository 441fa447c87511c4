package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fisionote/fisionote-backend/internal/observability"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
)

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type MetricsHandler struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewMetricsHandler(log *logger.Logger, metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{log: log.With("handler", "MetricsHandler"), metrics: metrics}
}

// GET /api/metrics
// Pipeline health counters (parse sources, validation outcomes, drift).
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	snap, err := h.metrics.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Error("metrics snapshot failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

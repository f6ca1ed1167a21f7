package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CycleRunner is the manual-trigger surface of the orchestrator.
type CycleRunner interface {
	ProcessAll(ctx context.Context) bool
}

// EngineHandler exposes the on-demand detection trigger.
type EngineHandler struct {
	engine CycleRunner
}

// NewEngineHandler creates an engine handler.
func NewEngineHandler(engine CycleRunner) *EngineHandler {
	return &EngineHandler{engine: engine}
}

// RegisterRoutes mounts the engine routes.
func (h *EngineHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/engine/run", h.Trigger)
}

// Trigger handles POST /engine/run. A cycle gated off by the re-run interval
// reports triggered=false rather than an error.
func (h *EngineHandler) Trigger(c *gin.Context) {
	triggered := h.engine.ProcessAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"triggered": triggered})
}

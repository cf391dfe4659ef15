package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ascent-climbing/ascent-backend/services"
	"github.com/ascent-climbing/ascent-backend/types"
)

type HealthHandler struct {
	healthService *services.HealthService
}

func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// LivenessCheck answers orchestrator liveness probes without touching any
// dependency.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck reports 503 while a required dependency is down so traffic
// is held back until the service can actually serve it.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	if health.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}

// DetailedHealth returns per-component status for dashboards and debugging.
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, health)
}

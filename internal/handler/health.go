package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// GetProviderHealth godoc
// @Summary      Upstream provider health
// @Description  Last success, last error and consecutive error count per provider. Counters never change routing.
// @Tags         health
// @Produce      json
// @Param        X-API-Key  header  string  false  "Diagnostics key, required when configured"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/providers/health [get]
func (h *Handler) GetProviderHealth(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-provider-health")
	defer span.End()

	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"providers": gin.H{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": h.health.Snapshot()})
}

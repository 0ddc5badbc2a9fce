package handler

import (
	"net/http"

	"github.com/apascualco/fleetway/internal/application"
	"github.com/gin-gonic/gin"
)

// DiscoveryHandler serves the ephemeral TTL projections consumed by
// load balancers and routers: fast liveness reads that never touch the
// durable store.
type DiscoveryHandler struct {
	registry *application.Registry
}

func NewDiscoveryHandler(registry *application.Registry) *DiscoveryHandler {
	return &DiscoveryHandler{registry: registry}
}

func (h *DiscoveryHandler) Instance(c *gin.Context) {
	entry := h.registry.Instance(c.Request.Context(), c.Param("name"))
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "instance_not_found",
			"message": "no discovery entry for this service",
		})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *DiscoveryHandler) Active(c *gin.Context) {
	active, ok := h.registry.Active(c.Request.Context(), c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "instance_not_found",
			"message": "no liveness flag for this service",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": active})
}

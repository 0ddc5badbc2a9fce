package handler

import (
	"net/http"

	"github.com/apascualco/fleetway/internal/application"
	"github.com/apascualco/fleetway/internal/domain"
	"github.com/gin-gonic/gin"
)

type RegistryHandler struct {
	registry *application.Registry
}

func NewRegistryHandler(registry *application.Registry) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

func (h *RegistryHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	rec, err := h.registry.Register(c.Request.Context(), &req)
	if err != nil {
		if domain.IsStorageError(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "storage_unavailable",
				"message": "registry storage is unavailable",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "registration_failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *RegistryHandler) Get(c *gin.Context) {
	rec, err := h.registry.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "registry storage is unavailable",
		})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "service_not_found",
			"message": "the specified service is not registered",
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *RegistryHandler) List(c *gin.Context) {
	status := domain.ServiceStatus(c.Query("status"))
	switch status {
	case "", domain.StatusHealthy, domain.StatusUnhealthy, domain.StatusUnknown:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "status must be one of healthy, unhealthy, unknown",
		})
		return
	}

	records, err := h.registry.List(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "registry storage is unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, domain.ServiceListResponse{Services: records, Total: len(records)})
}

func (h *RegistryHandler) ListHealthy(c *gin.Context) {
	records, err := h.registry.ListHealthy(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "registry storage is unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, domain.ServiceListResponse{Services: records, Total: len(records)})
}

func (h *RegistryHandler) UpdateHealth(c *gin.Context) {
	var req domain.HealthUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	rec, err := h.registry.UpdateHealth(c.Request.Context(), c.Param("name"), req.Status, req.ResponseTimeMs)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "registry storage is unavailable",
		})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "service_not_found",
			"message": "the specified service is not registered",
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *RegistryHandler) Deregister(c *gin.Context) {
	found, err := h.registry.Deregister(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "registry storage is unavailable",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "service_not_found",
			"message": "the specified service is not registered",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deregistered": true})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apascualco/fleetway/internal/application"
	"github.com/apascualco/fleetway/internal/domain"
	"github.com/gin-gonic/gin"
)

type FlagsHandler struct {
	flags *application.Flags
}

func NewFlagsHandler(flags *application.Flags) *FlagsHandler {
	return &FlagsHandler{flags: flags}
}

func (h *FlagsHandler) Create(c *gin.Context) {
	var req domain.FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	flag, err := h.flags.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case domain.IsStorageError(err) && isFlagExists(err):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "flag_exists",
				"message": "a flag with this name already exists in this environment",
			})
		case domain.IsStorageError(err):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "storage_unavailable",
				"message": "flag storage is unavailable",
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": err.Error(),
			})
		}
		return
	}
	c.JSON(http.StatusCreated, flag)
}

func (h *FlagsHandler) Get(c *gin.Context) {
	environment := c.DefaultQuery("environment", "production")
	flag, err := h.flags.Get(c.Request.Context(), c.Param("name"), environment)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "flag storage is unavailable",
		})
		return
	}
	if flag == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "flag_not_found",
			"message": "the specified flag does not exist",
		})
		return
	}
	c.JSON(http.StatusOK, flag)
}

func (h *FlagsHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	flags, err := h.flags.List(c.Request.Context(), c.Query("environment"), limit, offset)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "flag storage is unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"flags":  flags,
		"total":  len(flags),
		"limit":  limit,
		"offset": offset,
	})
}

func (h *FlagsHandler) Update(c *gin.Context) {
	var update domain.FlagUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	environment := c.DefaultQuery("environment", "production")
	flag, err := h.flags.Update(c.Request.Context(), c.Param("name"), environment, &update)
	if err != nil {
		if domain.IsStorageError(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "storage_unavailable",
				"message": "flag storage is unavailable",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}
	if flag == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "flag_not_found",
			"message": "the specified flag does not exist",
		})
		return
	}
	c.JSON(http.StatusOK, flag)
}

func (h *FlagsHandler) Delete(c *gin.Context) {
	environment := c.DefaultQuery("environment", "production")
	found, err := h.flags.Delete(c.Request.Context(), c.Param("name"), environment)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "flag storage is unavailable",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "flag_not_found",
			"message": "the specified flag does not exist",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type EvaluateRequest struct {
	FlagName    string `json:"flag_name" binding:"required"`
	Environment string `json:"environment" binding:"required"`
	UserID      string `json:"user_id"`
}

func (h *FlagsHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}
	if err := domain.ValidateEnvironment(req.Environment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	eval, err := h.flags.Evaluate(c.Request.Context(), req.FlagName, req.Environment, req.UserID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "storage_unavailable",
			"message": "flag storage is unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":     eval.Enabled,
		"reason":      eval.Reason,
		"flag_name":   req.FlagName,
		"environment": req.Environment,
	})
}

func isFlagExists(err error) bool {
	return errors.Is(err, domain.ErrFlagExists)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/namngocngo2210/veo3/internal/models"
	"go.uber.org/zap"
)

// GetLicense returns the cached license status.
func (h *GenerationHandler) GetLicense(c *gin.Context) {
	if h.checker == nil {
		h.respondError(c, http.StatusNotFound, "license checking is not configured")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    h.checker.Status(),
	})
}

// ActivateLicense redeems a license key for this device.
func (h *GenerationHandler) ActivateLicense(c *gin.Context) {
	if h.checker == nil {
		h.respondError(c, http.StatusNotFound, "license checking is not configured")
		return
	}

	var req models.ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "license key is required")
		return
	}

	result, err := h.checker.Activate(c.Request.Context(), req.Key)
	if err != nil {
		h.logger.Error("license activation failed", zap.Error(err))
		h.respondError(c, http.StatusBadGateway, "activation failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: result.Valid,
		Data:    result,
	})
}

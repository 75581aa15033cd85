package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/namngocngo2210/veo3/internal/storage"
	"go.uber.org/zap"
)

var allowedSettings = map[string]bool{
	storage.SettingAPIKey:    true,
	storage.SettingModel:     true,
	storage.SettingLanguage:  true,
	storage.SettingOutputDir: true,
}

// GetSetting returns one persisted setting. The API key is masked.
func (h *GenerationHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	if !allowedSettings[key] {
		h.respondError(c, http.StatusNotFound, "unknown setting")
		return
	}

	value, err := h.store.GetSetting(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("failed to read setting", zap.String("key", key), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to read setting")
		return
	}

	if key == storage.SettingAPIKey && len(value) > 4 {
		value = "****" + value[len(value)-4:]
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    gin.H{"key": key, "value": value},
	})
}

// PutSetting stores one setting value.
func (h *GenerationHandler) PutSetting(c *gin.Context) {
	key := c.Param("key")
	if !allowedSettings[key] {
		h.respondError(c, http.StatusNotFound, "unknown setting")
		return
	}

	var body struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, http.StatusBadRequest, "value is required")
		return
	}

	if err := h.store.SetSetting(c.Request.Context(), key, body.Value); err != nil {
		h.logger.Error("failed to store setting", zap.String("key", key), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to store setting")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true})
}

// GetHistory returns the newest-first history entries of a tab.
func (h *GenerationHandler) GetHistory(c *gin.Context) {
	entries, err := h.store.GetHistory(c.Request.Context(), c.Param("tab"))
	if err != nil {
		h.logger.Error("failed to read history", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to read history")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: entries})
}

// AppendHistory stores one opaque history entry for a tab.
func (h *GenerationHandler) AppendHistory(c *gin.Context) {
	var entry map[string]interface{}
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid history entry")
		return
	}

	if err := h.store.AppendHistory(c.Request.Context(), c.Param("tab"), entry); err != nil {
		h.logger.Error("failed to append history", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to append history")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true})
}

// ClearHistory drops the history of a tab.
func (h *GenerationHandler) ClearHistory(c *gin.Context) {
	if err := h.store.ClearHistory(c.Request.Context(), c.Param("tab")); err != nil {
		h.logger.Error("failed to clear history", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to clear history")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true})
}

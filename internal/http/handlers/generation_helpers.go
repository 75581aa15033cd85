package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/namngocngo2210/veo3/internal/generator"
	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/namngocngo2210/veo3/internal/storage"
	"go.uber.org/zap"
)

func timeNow() time.Time { return time.Now() }

// === INPUT PREPARATION ===

// prepareInputImages validates and normalizes every inline image of a batch
// before submission.
func (h *GenerationHandler) prepareInputImages(reqs []models.GenerationRequest) error {
	for i := range reqs {
		if err := h.prepareImage(&reqs[i].Image); err != nil {
			return fmt.Errorf("request %d image: %w", i, err)
		}
		if err := h.prepareImage(&reqs[i].LastFrame); err != nil {
			return fmt.Errorf("request %d last frame: %w", i, err)
		}
		for j := range reqs[i].ReferenceImages {
			prepared, err := h.preparedCopy(reqs[i].ReferenceImages[j])
			if err != nil {
				return fmt.Errorf("request %d reference image %d: %w", i, j, err)
			}
			reqs[i].ReferenceImages[j] = prepared
		}
	}
	return nil
}

func (h *GenerationHandler) prepareImage(img **models.InputImage) error {
	if *img == nil {
		return nil
	}
	prepared, err := h.preparedCopy(**img)
	if err != nil {
		return err
	}
	*img = &prepared
	return nil
}

func (h *GenerationHandler) preparedCopy(img models.InputImage) (models.InputImage, error) {
	raw, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return models.InputImage{}, fmt.Errorf("invalid base64 data: %w", err)
	}

	prepared, err := h.preparer.Prepare(raw, img.MimeType)
	if err != nil {
		return models.InputImage{}, err
	}
	return *prepared, nil
}

// === DIRECT EXECUTION (queue unavailable) ===

// runDirect processes a batch in-process when no queue is configured. It
// detaches from the request context; cancellation goes through the registry
// like the worker path.
func (h *GenerationHandler) runDirect(job *models.BatchJob) {
	ctx := context.Background()

	job.Status = models.JobStatusProcessing
	if err := h.store.SaveJob(ctx, job); err != nil {
		h.logger.Error("failed to persist job", zap.String("job_id", job.ID), zap.Error(err))
	}

	jobCtx, cancel := context.WithCancel(ctx)
	release := h.registry.Register(job.ID, cancel)
	defer release()
	defer cancel()

	reqs := make([]models.GenerationRequest, len(job.Items))
	taskIDs := make([]string, len(job.Items))
	for i, item := range job.Items {
		reqs[i] = item.Request
		taskIDs[i] = item.TaskID
	}
	h.resolveCredentials(ctx, reqs)

	h.gen.GenerateBatch(jobCtx, reqs, taskIDs, func(u generator.Update) {
		if err := h.store.UpdateJobItem(ctx, job.ID, u.Index, u.Result); err != nil {
			h.logger.Error("failed to persist item update",
				zap.String("job_id", job.ID),
				zap.Int("index", u.Index),
				zap.Error(err))
		}
	})
}

func (h *GenerationHandler) resolveCredentials(ctx context.Context, reqs []models.GenerationRequest) {
	apiKey := h.config.Provider.APIKey
	if stored, err := h.store.GetSetting(ctx, storage.SettingAPIKey); err == nil && stored != "" {
		apiKey = stored
	}
	model := h.config.Provider.Model
	if stored, err := h.store.GetSetting(ctx, storage.SettingModel); err == nil && stored != "" {
		model = stored
	}

	for i := range reqs {
		if reqs[i].APIKey == "" {
			reqs[i].APIKey = apiKey
		}
		if reqs[i].Model == "" {
			reqs[i].Model = model
		}
	}
}

// === HISTORY ===

func (h *GenerationHandler) appendSubmitHistory(ctx context.Context, reqs []models.GenerationRequest) {
	for _, req := range reqs {
		tab := "video"
		if h.gen != nil && req.Model != "" && isImageModel(req.Model) {
			tab = "image"
		}
		entry := map[string]interface{}{
			"prompt":       req.Prompt,
			"model":        req.Model,
			"aspect_ratio": req.AspectRatio,
			"submitted_at": time.Now(),
		}
		if err := h.store.AppendHistory(ctx, tab, entry); err != nil {
			h.logger.Warn("failed to append history", zap.Error(err))
		}
	}
}

func isImageModel(model string) bool {
	m := strings.ToLower(model)
	return strings.Contains(m, "image") || strings.Contains(m, "imagen")
}

// === RESPONSE HANDLING ===

func (h *GenerationHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

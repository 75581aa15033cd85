package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/namngocngo2210/veo3/internal/config"
	"github.com/namngocngo2210/veo3/internal/generator"
	"github.com/namngocngo2210/veo3/internal/license"
	"github.com/namngocngo2210/veo3/internal/media"
	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/namngocngo2210/veo3/internal/queue"
	"github.com/namngocngo2210/veo3/internal/storage"
	"go.uber.org/zap"
)

type GenerationHandler struct {
	gen      *generator.Generator
	store    *storage.Service
	queue    *queue.Service // nil when RabbitMQ is unavailable
	registry *generator.CancelRegistry
	checker  *license.Checker
	preparer *media.Preparer
	veo      ProviderHealth
	logger   *zap.Logger
	config   *config.Config
}

// ProviderHealth is the slice of the provider client the health endpoint
// needs.
type ProviderHealth interface {
	HealthCheck(ctx context.Context, apiKey string) error
}

func NewGenerationHandler(
	gen *generator.Generator,
	store *storage.Service,
	q *queue.Service,
	registry *generator.CancelRegistry,
	checker *license.Checker,
	preparer *media.Preparer,
	veo ProviderHealth,
	logger *zap.Logger,
	config *config.Config,
) *GenerationHandler {
	return &GenerationHandler{
		gen:      gen,
		store:    store,
		queue:    q,
		registry: registry,
		checker:  checker,
		preparer: preparer,
		veo:      veo,
		logger:   logger,
		config:   config,
	}
}

// SubmitBatch accepts an ordered list of generation requests and starts
// processing them asynchronously. The response carries the job id; progress
// is observed through GetJob.
func (h *GenerationHandler) SubmitBatch(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid batch request: "+err.Error())
		return
	}

	if err := h.prepareInputImages(req.Requests); err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	for i := range req.Requests {
		if len(req.Requests[i].ReferenceImages) > models.MaxReferenceImages {
			h.respondError(c, http.StatusBadRequest, "too many reference images")
			return
		}
	}

	jobID := uuid.New().String()
	taskIDs := generator.NewTaskIDs(len(req.Requests))
	job := generator.BuildJob(jobID, req.Requests, taskIDs)

	ctx := c.Request.Context()
	if err := h.store.SaveJob(ctx, job); err != nil {
		h.logger.Error("failed to persist job", zap.String("job_id", jobID), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to persist job")
		return
	}

	if h.queue != nil {
		if err := h.queue.PublishJob(ctx, job); err != nil {
			h.logger.Error("failed to enqueue job", zap.String("job_id", jobID), zap.Error(err))
			h.respondError(c, http.StatusInternalServerError, "failed to enqueue job")
			return
		}
	} else {
		go h.runDirect(job)
	}

	h.appendSubmitHistory(ctx, req.Requests)

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data: models.BatchResponse{
			JobID:  jobID,
			Status: job.Status,
			Count:  len(job.Items),
		},
	})
}

// GetJob returns the persisted job record with per-item statuses.
func (h *GenerationHandler) GetJob(c *gin.Context) {
	job, err := h.store.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("failed to load job", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "failed to load job")
		return
	}
	if job == nil {
		h.respondError(c, http.StatusNotFound, "job not found")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: job})
}

// CancelJob requests cooperative cancellation of a running batch. In-flight
// provider calls are aborted through the shared context; items settle into
// a cancelled terminal state within one poll interval.
func (h *GenerationHandler) CancelJob(c *gin.Context) {
	jobID := c.Param("id")
	if !h.registry.Cancel(jobID) {
		h.respondError(c, http.StatusNotFound, "job is not running")
		return
	}

	h.logger.Info("job cancellation requested", zap.String("job_id", jobID))
	c.JSON(http.StatusOK, models.APIResponse{Success: true})
}

// HealthCheck reports the state of the app's collaborators.
func (h *GenerationHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	services := h.store.HealthCheck(ctx)

	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	}
	if h.veo != nil && h.config.Provider.APIKey != "" {
		if err := h.veo.HealthCheck(ctx, h.config.Provider.APIKey); err != nil {
			services["provider"] = "unhealthy: " + err.Error()
		} else {
			services["provider"] = "healthy"
		}
	}

	overall := "healthy"
	statusCode := http.StatusOK
	for _, v := range services {
		if v != "healthy" {
			overall = "unhealthy"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: timeNow(),
			Services:  services,
		},
	})
}

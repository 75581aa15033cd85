package generator

import (
	"context"
	"errors"
	"time"

	"github.com/namngocngo2210/veo3/internal/config"
	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/namngocngo2210/veo3/internal/veo"
	"go.uber.org/zap"
)

// MediaStore persists downloaded samples. Mirroring is best effort and may
// be a no-op.
type MediaStore interface {
	SaveMedia(data []byte, dir, filename string) (string, error)
	Mirror(ctx context.Context, data []byte, filename string) (string, error)
}

// Generator drives generation requests through the submit → poll → download
// lifecycle and reports status transitions to caller-supplied observers.
type Generator struct {
	client *veo.Client
	store  MediaStore
	cfg    config.GenerationConfig
	logger *zap.Logger
}

func New(client *veo.Client, store MediaStore, cfg config.GenerationConfig, logger *zap.Logger) *Generator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.VideoConcurrency <= 0 {
		cfg.VideoConcurrency = 2
	}
	if cfg.ImageConcurrency <= 0 {
		cfg.ImageConcurrency = 3
	}
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = "veo"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client: client,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Generate runs one request to completion. It never returns an error:
// every outcome, including cancellation, is delivered through onUpdate as
// exactly one terminal status after the initial loading update. Retries are
// the caller's business.
func (g *Generator) Generate(ctx context.Context, req *models.GenerationRequest, onUpdate func(models.GenerationResult)) {
	onUpdate(models.GenerationResult{Status: models.StatusLoading, UpdatedAt: time.Now()})

	if err := ctx.Err(); err != nil {
		onUpdate(terminalFor(err))
		return
	}

	op, err := g.client.StartGeneration(ctx, req)
	if err != nil {
		g.logger.Warn("generation submission failed",
			zap.String("model", req.Model),
			zap.Error(err))
		onUpdate(terminalFor(err))
		return
	}

	previews, paths, err := g.pollOperation(ctx, op, req)
	if err != nil {
		g.logger.Warn("generation failed",
			zap.String("operation", op.Name),
			zap.Error(err))
		onUpdate(terminalFor(err))
		return
	}

	onUpdate(models.GenerationResult{
		Status:      models.StatusSuccess,
		PreviewURLs: previews,
		LocalPaths:  paths,
		UpdatedAt:   time.Now(),
	})
}

// terminalFor maps a lifecycle failure onto its terminal result.
// Cancellation stays distinguishable from true failures so callers can
// avoid presenting it as one.
func terminalFor(err error) models.GenerationResult {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return models.GenerationResult{Status: models.StatusCancelled, Error: "cancelled", UpdatedAt: time.Now()}
	}
	return models.GenerationResult{Status: models.StatusError, Error: err.Error(), UpdatedAt: time.Now()}
}

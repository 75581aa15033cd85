package generator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/namngocngo2210/veo3/internal/veo"
	"github.com/namngocngo2210/veo3/pkg/utils"
	"go.uber.org/zap"
)

// pollOperation waits for a long-running operation to finish, then downloads
// its samples one at a time. A sample whose download or write fails is
// logged and dropped from both returned lists, so previews and paths always
// line up. With PollMaxWait unset the loop runs until the provider reports
// done or ctx is cancelled.
func (g *Generator) pollOperation(ctx context.Context, op veo.Operation, req *models.GenerationRequest) ([]string, []string, error) {
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if g.cfg.PollMaxWait > 0 && time.Since(start) > g.cfg.PollMaxWait {
			return nil, nil, fmt.Errorf("operation %s did not complete within %s", op.Name, g.cfg.PollMaxWait)
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(g.cfg.PollInterval):
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		done, samples, err := g.client.GetOperation(ctx, op, req.APIKey)
		if err != nil {
			return nil, nil, err
		}
		if !done {
			continue
		}

		if len(samples) == 0 {
			return nil, nil, veo.ErrNoContent
		}
		previews, paths := g.downloadSamples(ctx, samples, req)
		return previews, paths, nil
	}
}

// downloadSamples fetches and persists each sample sequentially to bound
// per-item resource usage.
func (g *Generator) downloadSamples(ctx context.Context, samples []veo.Sample, req *models.GenerationRequest) ([]string, []string) {
	var previews, paths []string
	ts := time.Now()

	for i, sample := range samples {
		data, err := g.client.Download(ctx, sample.URI, req.APIKey)
		if err != nil {
			g.logger.Warn("sample download failed",
				zap.Int("sample", i),
				zap.Error(err))
			continue
		}

		ext := utils.ExtForMime(http.DetectContentType(data))
		filename := utils.MediaFilename(g.cfg.FilePrefix, ts, i, ext)

		path, err := g.store.SaveMedia(data, req.OutputDir, filename)
		if err != nil {
			g.logger.Warn("sample write failed",
				zap.Int("sample", i),
				zap.String("filename", filename),
				zap.Error(err))
			continue
		}

		preview := sample.URI
		if mirrored, err := g.store.Mirror(ctx, data, filename); err != nil {
			g.logger.Warn("sample mirror failed", zap.String("filename", filename), zap.Error(err))
		} else if mirrored != "" {
			preview = mirrored
		}

		previews = append(previews, preview)
		paths = append(paths, path)
	}

	return previews, paths
}

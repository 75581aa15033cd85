package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/namngocngo2210/veo3/internal/generator"
	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/namngocngo2210/veo3/internal/storage"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// StartWorker consumes batch jobs until ctx is cancelled. Each worker runs
// one batch at a time; concurrency inside a batch is the orchestrator's
// business.
func (s *Service) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := s.channel.Consume(
		s.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	s.logger.Info("worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					s.logger.Warn("message channel closed", zap.Int("worker_id", workerID))
					return
				}

				s.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

func (s *Service) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	var job models.BatchJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		s.logger.Error("failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false) // don't requeue malformed messages
		return
	}

	s.logger.Info("processing batch job",
		zap.String("job_id", job.ID),
		zap.Int("items", len(job.Items)),
		zap.Int("worker_id", workerID))

	s.runJob(ctx, &job)

	if err := msg.Ack(false); err != nil {
		s.logger.Error("failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}
}

// runJob drives one batch through the orchestrator, persisting every
// per-item update so the API can serve incremental job status.
func (s *Service) runJob(ctx context.Context, job *models.BatchJob) {
	job.Status = models.JobStatusProcessing
	if err := s.store.SaveJob(ctx, job); err != nil {
		s.logger.Error("failed to persist job", zap.String("job_id", job.ID), zap.Error(err))
	}

	jobCtx, cancel := context.WithCancel(ctx)
	release := s.registry.Register(job.ID, cancel)
	defer release()
	defer cancel()

	reqs := make([]models.GenerationRequest, len(job.Items))
	taskIDs := make([]string, len(job.Items))
	for i, item := range job.Items {
		reqs[i] = item.Request
		taskIDs[i] = item.TaskID
	}
	s.resolveCredentials(ctx, reqs)

	s.gen.GenerateBatch(jobCtx, reqs, taskIDs, func(u generator.Update) {
		// Persist from the orchestrator's single consumer loop; updates
		// arrive one at a time.
		if err := s.store.UpdateJobItem(ctx, job.ID, u.Index, u.Result); err != nil {
			s.logger.Error("failed to persist item update",
				zap.String("job_id", job.ID),
				zap.Int("index", u.Index),
				zap.Error(err))
		}
	})

	final, err := s.store.GetJob(ctx, job.ID)
	if err != nil || final == nil {
		s.logger.Error("failed to load finished job", zap.String("job_id", job.ID), zap.Error(err))
		return
	}

	s.logger.Info("batch job finished",
		zap.String("job_id", job.ID),
		zap.String("status", final.Status))
}

// resolveCredentials fills the credential and model of each request from
// the settings store and config when the caller left them empty.
func (s *Service) resolveCredentials(ctx context.Context, reqs []models.GenerationRequest) {
	apiKey := s.cfg.Provider.APIKey
	if stored, err := s.store.GetSetting(ctx, storage.SettingAPIKey); err == nil && stored != "" {
		apiKey = stored
	}
	model := s.cfg.Provider.Model
	if stored, err := s.store.GetSetting(ctx, storage.SettingModel); err == nil && stored != "" {
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

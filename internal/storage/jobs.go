package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/redis/go-redis/v9"
)

const jobPrefix = "job:"

// SaveJob persists the full batch job record.
func (s *Service) SaveJob(ctx context.Context, job *models.BatchJob) error {
	job.UpdatedAt = time.Now()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return s.redisClient.Set(ctx, jobPrefix+job.ID, data, s.jobTTL).Err()
}

// GetJob loads a batch job record by id. Returns nil when unknown.
func (s *Service) GetJob(ctx context.Context, id string) (*models.BatchJob, error) {
	data, err := s.redisClient.Get(ctx, jobPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read job: %w", err)
	}

	var job models.BatchJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// UpdateJobItem merges one item result into the persisted job record and
// recomputes the job-level status. It is called from the orchestrator's
// update loop, which delivers updates one at a time, so no locking beyond
// redis itself is needed.
func (s *Service) UpdateJobItem(ctx context.Context, jobID string, index int, result models.GenerationResult) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if index < 0 || index >= len(job.Items) {
		return fmt.Errorf("item index %d out of range for job %s", index, jobID)
	}

	job.Items[index].Result = result
	job.Status = jobStatusFromItems(job.Items)
	return s.SaveJob(ctx, job)
}

func jobStatusFromItems(items []models.BatchItem) string {
	done := 0
	failed := 0
	cancelled := 0
	for _, it := range items {
		switch it.Result.Status {
		case models.StatusSuccess:
			done++
		case models.StatusError:
			done++
			failed++
		case models.StatusCancelled:
			done++
			cancelled++
		}
	}

	if done < len(items) {
		return models.JobStatusProcessing
	}
	if cancelled > 0 && cancelled == len(items) {
		return models.JobStatusCancelled
	}
	if failed == len(items) {
		return models.JobStatusFailed
	}
	return models.JobStatusCompleted
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/namngocngo2210/veo3/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// PublishJob enqueues a batch job for the workers. The full job record is
// carried in the message; credentials are never serialized and are resolved
// by the worker from the settings store.
func (s *Service) PublishJob(ctx context.Context, job *models.BatchJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = s.channel.Publish(
		"",          // exchange
		s.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	s.logger.Info("batch job published",
		zap.String("job_id", job.ID),
		zap.Int("items", len(job.Items)))
	return nil
}

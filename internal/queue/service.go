package queue

import (
	"fmt"

	"github.com/namngocngo2210/veo3/internal/config"
	"github.com/namngocngo2210/veo3/internal/generator"
	"github.com/namngocngo2210/veo3/internal/storage"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Service owns the RabbitMQ connection for the asynchronous batch path:
// accepted batches are published as jobs and picked up by workers that run
// the generation orchestrator.
type Service struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	logger    *zap.Logger
	queueName string
	gen       *generator.Generator
	store     *storage.Service
	registry  *generator.CancelRegistry
	cfg       *config.Config
}

func NewService(
	cfg *config.Config,
	gen *generator.Generator,
	store *storage.Service,
	registry *generator.CancelRegistry,
	logger *zap.Logger,
) (*Service, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queueName := "generation_jobs"

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Service{
		conn:      conn,
		channel:   channel,
		logger:    logger,
		queueName: queueName,
		gen:       gen,
		store:     store,
		registry:  registry,
		cfg:       cfg,
	}, nil
}

// HealthCheck reports whether the RabbitMQ connection is usable.
func (s *Service) HealthCheck() string {
	if s.conn == nil || s.conn.IsClosed() {
		return "unhealthy: connection closed"
	}
	if s.channel == nil {
		return "unhealthy: channel not available"
	}
	return "healthy"
}

// Close closes the queue connection.
func (s *Service) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

package storage

import (
	"time"

	"github.com/namngocngo2210/veo3/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// Service owns the app's persistence surfaces: a redis-backed key-value
// store for settings, history and job records, the local output directory
// for downloaded media, and an optional storage bucket the media is
// mirrored to.
type Service struct {
	redisClient *redis.Client
	sbClient    *storage_go.Client
	bucket      string
	outputDir   string
	jobTTL      time.Duration
	logger      *zap.Logger
}

func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var sbClient *storage_go.Client
	if cfg.Supabase.URL != "" {
		sbClient = storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
	}

	return &Service{
		redisClient: redisClient,
		sbClient:    sbClient,
		bucket:      cfg.Supabase.BUCKET,
		outputDir:   cfg.Storage.OutputDir,
		jobTTL:      cfg.Storage.JobTTL,
		logger:      logger,
	}, nil
}

// OutputDir returns the configured default output directory.
func (s *Service) OutputDir() string {
	return s.outputDir
}

func (s *Service) Close() error {
	return s.redisClient.Close()
}

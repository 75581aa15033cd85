package storage

import (
	"context"

	storage_go "github.com/supabase-community/storage-go"
)

// HealthCheck checks redis and, when configured, the storage bucket.
func (s *Service) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	if s.sbClient != nil {
		_, err := s.sbClient.ListFiles(s.bucket, "", storage_go.FileSearchOptions{})
		if err != nil {
			status["bucket"] = "unhealthy: " + err.Error()
		} else {
			status["bucket"] = "healthy"
		}
	}

	return status
}

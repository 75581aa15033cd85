package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/namngocngo2210/veo3/pkg/utils"
	"go.uber.org/zap"
)

// Mirror uploads one downloaded resource to the configured storage bucket
// and returns its public URL. Mirroring is best effort; callers log the
// error and move on.
func (s *Service) Mirror(ctx context.Context, data []byte, filename string) (string, error) {
	if s.sbClient == nil {
		return "", nil
	}

	key := utils.StorageKey(filename)
	_, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to mirror to bucket: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	s.logger.Debug("media mirrored", zap.String("key", key))
	return publicURL.SignedURL, nil
}

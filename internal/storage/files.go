package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// SaveMedia writes one downloaded resource to dir, creating the directory
// tree if needed. An empty dir falls back to the configured output
// directory. Returns the absolute path of the written file.
func (s *Service) SaveMedia(data []byte, dir, filename string) (string, error) {
	if dir == "" {
		dir = s.outputDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	s.logger.Debug("media saved",
		zap.String("path", abs),
		zap.Int("bytes", len(data)))

	return abs, nil
}

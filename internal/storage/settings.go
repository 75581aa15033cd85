package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Settings keys the app persists between sessions.
const (
	SettingAPIKey    = "api_key"
	SettingModel     = "model"
	SettingLanguage  = "language"
	SettingOutputDir = "output_dir"
)

const settingPrefix = "setting:"

// GetSetting returns the stored value for key, or "" when unset.
func (s *Service) GetSetting(ctx context.Context, key string) (string, error) {
	val, err := s.redisClient.Get(ctx, settingPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("settings get error: %w", err)
	}
	return val, nil
}

// SetSetting stores value under key. Settings have no expiry.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	return s.redisClient.Set(ctx, settingPrefix+key, value, 0).Err()
}

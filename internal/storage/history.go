package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	historyPrefix  = "history:"
	maxHistorySize = 200
)

// AppendHistory pushes one entry onto the history list of a tab, trimming
// the list to the newest maxHistorySize entries.
func (s *Service) AppendHistory(ctx context.Context, tab string, entry interface{}) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	key := historyPrefix + tab
	pipe := s.redisClient.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, maxHistorySize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// GetHistory returns the newest-first history entries of a tab as raw JSON.
func (s *Service) GetHistory(ctx context.Context, tab string) ([]json.RawMessage, error) {
	vals, err := s.redisClient.LRange(ctx, historyPrefix+tab, 0, maxHistorySize-1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]json.RawMessage, 0, len(vals))
	for _, v := range vals {
		entries = append(entries, json.RawMessage(v))
	}
	return entries, nil
}

// ClearHistory drops the history list of a tab.
func (s *Service) ClearHistory(ctx context.Context, tab string) error {
	return s.redisClient.Del(ctx, historyPrefix+tab).Err()
}

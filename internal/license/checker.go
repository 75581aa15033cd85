package license

import (
	"context"
	"sync"
	"time"

	"github.com/namngocngo2210/veo3/internal/models"
	"go.uber.org/zap"
)

// Checker keeps a cached license status, refreshed at startup and then on a
// fixed interval. A failed refresh keeps the previous status so a flaky
// network never locks the user out mid-session.
type Checker struct {
	client   *Client
	deviceID string
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	cached models.LicenseStatus
}

func NewChecker(client *Client, deviceID string, interval time.Duration, logger *zap.Logger) *Checker {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		client:   client,
		deviceID: deviceID,
		interval: interval,
		logger:   logger,
	}
}

// Start refreshes the status once, then keeps refreshing in the background
// until ctx is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.refresh(ctx)

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refresh(ctx)
			}
		}
	}()
}

func (c *Checker) refresh(ctx context.Context) {
	status, err := c.client.Check(ctx, c.deviceID)
	if err != nil {
		c.logger.Warn("license check failed, keeping cached status", zap.Error(err))
		return
	}

	c.mu.Lock()
	c.cached = *status
	c.mu.Unlock()

	c.logger.Info("license status refreshed", zap.Bool("valid", status.Valid))
}

// Status returns the last known license status.
func (c *Checker) Status() models.LicenseStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cached
}

// Activate redeems a key and refreshes the cached status on success.
func (c *Checker) Activate(ctx context.Context, key string) (*models.ActivationResult, error) {
	result, err := c.client.Activate(ctx, key, c.deviceID)
	if err != nil {
		return nil, err
	}

	if result.Valid {
		c.refresh(ctx)
	}
	return result, nil
}

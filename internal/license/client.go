package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/namngocngo2210/veo3/internal/models"
)

// Client wraps the remote license validation endpoints. The protocol is
// fixed: a check call keyed by device id and an explicit activation call.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Check asks the license server whether the device holds a valid license.
func (c *Client) Check(ctx context.Context, deviceID string) (*models.LicenseStatus, error) {
	endpoint := fmt.Sprintf("%s/licenses/check?device_id=%s", c.baseURL, url.QueryEscape(deviceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("license check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("license check failed: status %d", resp.StatusCode)
	}

	var body struct {
		Valid   bool   `json:"valid"`
		License string `json:"license,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode license response: %w", err)
	}

	return &models.LicenseStatus{
		Valid:     body.Valid,
		License:   body.License,
		CheckedAt: time.Now(),
	}, nil
}

// Activate redeems a license key for the device.
func (c *Client) Activate(ctx context.Context, key, deviceID string) (*models.ActivationResult, error) {
	payload, err := json.Marshal(map[string]string{
		"key":       key,
		"device_id": deviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/licenses/activate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("activation failed: %w", err)
	}
	defer resp.Body.Close()

	var result models.ActivationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode activation response: %w", err)
	}
	return &result, nil
}

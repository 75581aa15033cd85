package veo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/namngocngo2210/veo3/internal/models"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the generative video API. It covers the three calls the
// generation lifecycle needs: start a long-running operation, check its
// status, and download a produced resource.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// StartGeneration submits one generation request and returns the handle of
// the server-side operation. Exactly one instance is sent per request; the
// parameters object is omitted entirely when nothing applies, because the
// provider distinguishes absence from an empty object.
func (c *Client) StartGeneration(ctx context.Context, req *models.GenerationRequest) (Operation, error) {
	body := predictRequest{
		Instances: []instance{{Prompt: req.Prompt}},
	}
	if req.Image != nil {
		body.Instances[0].Image = &inlineImage{
			BytesBase64Encoded: req.Image.Data,
			MimeType:           req.Image.MimeType,
		}
	}

	params := &parameters{AspectRatio: req.AspectRatio}
	if req.LastFrame != nil {
		params.LastFrame = &inlineImage{
			BytesBase64Encoded: req.LastFrame.Data,
			MimeType:           req.LastFrame.MimeType,
		}
	}
	for _, ref := range req.ReferenceImages {
		params.ReferenceImages = append(params.ReferenceImages, referenceImage{
			Image: inlineImage{
				BytesBase64Encoded: ref.Data,
				MimeType:           ref.MimeType,
			},
			ReferenceType: referenceTypeAsset,
		})
	}
	if !params.empty() {
		body.Parameters = params
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Operation{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:predictLongRunning?key=%s", c.baseURL, req.Model, req.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Operation{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Operation{}, fmt.Errorf("failed to submit generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Operation{}, &SubmissionError{StatusCode: resp.StatusCode, Message: readErrMsg(resp.Body)}
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Operation{}, fmt.Errorf("failed to decode submission response: %w", err)
	}
	if pr.Name == "" {
		return Operation{}, &SubmissionError{StatusCode: resp.StatusCode, Message: "response has no operation name"}
	}

	c.logger.Debug("generation submitted",
		zap.String("model", req.Model),
		zap.String("operation", pr.Name))

	return Operation{Name: pr.Name}, nil
}

// GetOperation queries the status of a long-running operation. When the
// operation is done it returns the produced samples, which may be empty.
func (c *Client) GetOperation(ctx context.Context, op Operation, apiKey string) (bool, []Sample, error) {
	endpoint := fmt.Sprintf("%s/%s?key=%s", c.baseURL, strings.TrimLeft(op.Name, "/"), apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return false, nil, fmt.Errorf("failed to query operation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, nil, &PollingError{StatusCode: resp.StatusCode, Message: readErrMsg(resp.Body)}
	}

	var or operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return false, nil, fmt.Errorf("failed to decode operation response: %w", err)
	}

	if !or.Done {
		return false, nil, nil
	}
	if or.Error != nil {
		return true, nil, &PollingError{StatusCode: or.Error.Code, Message: or.Error.Message}
	}

	var samples []Sample
	if or.Response != nil {
		for _, s := range or.Response.GenerateVideoResponse.GeneratedSamples {
			samples = append(samples, Sample{URI: s.Video.URI})
		}
	}
	return true, samples, nil
}

// Download fetches the bytes of one produced resource. The credential is
// appended as a query parameter; the separator depends on whether the URI
// already carries a query string. Redirects are followed by the underlying
// client.
func (c *Client) Download(ctx context.Context, uri, apiKey string) ([]byte, error) {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+sep+"key="+apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to download resource: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &DownloadError{StatusCode: resp.StatusCode, URI: uri}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource body: %w", err)
	}
	return data, nil
}

// HealthCheck verifies the provider endpoint is reachable.
func (c *Client) HealthCheck(ctx context.Context, apiKey string) error {
	endpoint := fmt.Sprintf("%s/models?key=%s", c.baseURL, apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider health check failed: status=%d msg=%s", resp.StatusCode, readErrMsg(resp.Body))
	}
	return nil
}

func readErrMsg(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var er struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

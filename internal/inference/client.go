package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/eleven-am/pathsense/internal/frame"
)

// Client posts compressed frames to the remote hazard-detection service.
// The wire format is fixed: a JSON body carrying a data-URL encoded JPEG,
// answered by an alert list plus an annotated image.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
	}
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Alerts         []string `json:"alerts"`
	ProcessedImage string   `json:"processed_image"`
}

func (c *Client) Detect(ctx context.Context, f *frame.Frame) (*Result, error) {
	if f == nil || len(f.Data) == 0 {
		return nil, fmt.Errorf("no frame data provided")
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(f.Data)

	body, err := json.Marshal(detectRequest{Image: dataURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector returned status %d", resp.StatusCode)
	}

	var detectResp detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&detectResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &Result{
		Alerts:         detectResp.Alerts,
		ProcessedImage: detectResp.ProcessedImage,
		Timestamp:      f.Timestamp,
	}, nil
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "HEAD", c.endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError
}

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chatcartlabs/chatcart-backend/pkg/config"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
)

const defaultTimeout = 10 * time.Second

var (
	errLoggerRequired = errors.New("notifier logger is required")
	errEmptyWebhook   = errors.New("webhook url is required")
)

// Destination is the resolved webhook target for a merchant's channel.
type Destination struct {
	WebhookURL  string
	AccessToken string
}

// Client delivers best-effort order notifications to merchant webhooks.
// Delivery failures are reported to the caller but never block order flow.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *logger.Logger
}

// NewClient builds the webhook notifier with the configured timeout.
func NewClient(cfg config.NotifierConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "chatcart-notifier/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		logger:     logg,
	}, nil
}

// Push POSTs the payload to the destination webhook as JSON. A non-2xx
// response counts as a failure so the dispatcher can retry.
func (c *Client) Push(ctx context.Context, dest Destination, payload any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	url := strings.TrimSpace(dest.WebhookURL)
	if url == "" {
		return errEmptyWebhook
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token := strings.TrimSpace(dest.AccessToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"bankinfo/internal/config"
)

type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond},
	}
}

// FetchPage issues a single GET and returns the whole body, capped at
// ScrapeMaxBodyBytes. Failures are not retried.
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if c.cfg.ScrapeMaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, c.cfg.ScrapeMaxBodyBytes)
	}
	blob, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status=%d body=%s", pageURL, resp.StatusCode, snippet(blob, 200))
	}
	return blob, nil
}

func snippet(blob []byte, max int) string {
	if len(blob) <= max {
		return string(blob)
	}
	return string(blob[:max]) + "..."
}

// Package frontend holds the outbound client that tells the rendering
// frontend to drop its cache after content changed.
package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client posts cache-invalidation requests to the frontend's revalidate
// endpoint. Calls are best-effort: the caller logs failures and moves on.
type Client struct {
	url    string
	token  string
	http   *http.Client
	logger *slog.Logger
}

// New builds a client for the given endpoint URL. An empty URL yields a
// nil client, which callers treat as "invalidation disabled".
func New(url, token string, logger *slog.Logger) *Client {
	if url == "" {
		return nil
	}
	return &Client{
		url:   url,
		token: token,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type invalidateRequest struct {
	Paths []string `json:"paths,omitempty"`
}

// Invalidate asks the frontend to revalidate. paths lists content that
// disappeared; an empty list means "everything may have changed".
func (c *Client) Invalidate(ctx context.Context, paths []string) error {
	body, err := json.Marshal(invalidateRequest{Paths: paths})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("revalidate returned HTTP %d", resp.StatusCode)
	}
	c.logger.Debug("frontend cache invalidated", slog.Int("paths", len(paths)))
	return nil
}

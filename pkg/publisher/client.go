// Package publisher is a thin HTTP client for the index CLI subcommand: it
// posts an ad-hoc index-a-URL request to a running webdex server, the same
// client idiom the teacher used to POST ingest requests.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

// Client posts index requests to a webdex server's /index endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a Client configured with the given base URL and API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type indexRequest struct {
	URL string `json:"url"`
}

// PostIndex sends {"url": url} to POST /index and returns an error unless
// the server accepts it (spec §4.5 step 7, spec §6 index_single_url).
func (c *Client) PostIndex(ctx context.Context, url string) error {
	body, err := json.Marshal(indexRequest{URL: url})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/index"

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is intentionally user-provided via CLI flag
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

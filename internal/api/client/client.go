// Package client provides a thin HTTP client for the discogs-alert API,
// used by the CLI to talk to a running server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"

	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// StatusError is returned for responses with a 4xx or 5xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// IsConflict reports whether err is a 409 response, returned while the
// server is already running a cycle.
func IsConflict(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client is a thin HTTP client for the discogs-alert API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client targeting the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// TriggerCycle asks the server to run a cycle now and waits for its report.
func (c *Client) TriggerCycle(ctx context.Context) (*domain.CycleReport, error) {
	var report domain.CycleReport
	if err := c.do(ctx, http.MethodPost, "/api/v1/cycle", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// LastCycle returns the report of the server's most recent cycle.
func (c *Client) LastCycle(ctx context.Context) (*domain.CycleReport, error) {
	var report domain.CycleReport
	if err := c.do(ctx, http.MethodGet, "/api/v1/cycle/last", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Wantlist returns the releases the server is watching.
func (c *Client) Wantlist(ctx context.Context) ([]domain.Release, error) {
	var body struct {
		Releases []domain.Release `json:"releases"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/wantlist", &body); err != nil {
		return nil, err
	}
	return body.Releases, nil
}

func (c *Client) do(ctx context.Context, method, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("API server not running at %s", c.baseURL)
		}
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if dst != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dst); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

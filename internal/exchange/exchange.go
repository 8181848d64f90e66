// Package exchange fetches currency exchange rates over HTTP.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/donaldgifford/discogs-alert/pkg/currency"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// DefaultURL is the rate service root.
const DefaultURL = "https://api.exchangerate.host"

// ErrMalformedResponse is returned when the rate service answers without a
// rate table.
var ErrMalformedResponse = errors.New("malformed rate response")

// Client implements currency.RateProvider against an exchangerate.host
// compatible service.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// New creates a rate client. An empty baseURL selects DefaultURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Rates implements currency.RateProvider. Each value is the number of
// units of that currency per one unit of base.
func (c *Client) Rates(ctx context.Context, base string) (currency.Rates, error) {
	code, err := currency.Normalize(base)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + "/latest?" + url.Values{"base": {code}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(fmt.Sprintf("requesting %s rates", code), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate service error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed latestResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("%w: no rates for %s", ErrMalformedResponse, code)
	}

	rates := make(currency.Rates, len(parsed.Rates))
	for k, v := range parsed.Rates {
		rates[strings.ToUpper(k)] = v
	}
	// The base is always worth one of itself even if the service omits it.
	if _, ok := rates[code]; !ok {
		rates[code] = 1
	}
	return rates, nil
}

// transportError marks dial, DNS and timeout failures as connectivity
// problems so a cycle stops instead of retrying per listing.
func transportError(action string, err error) error {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		return fmt.Errorf("%s: %w", action, &domain.ConnectivityError{Service: "exchange rates", Err: err})
	}
	return fmt.Errorf("%s: %w", action, err)
}

package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// DefaultAPIURL is the Discogs REST API root.
const DefaultAPIURL = "https://api.discogs.com"

// ListItem is one entry of a user list.
type ListItem struct {
	ID           int64  `json:"id"`
	DisplayTitle string `json:"display_title"`
	Comment      string `json:"comment"`
	Type         string `json:"type"`
	URI          string `json:"uri"`
	ResourceURL  string `json:"resource_url"`
	ImageURL     string `json:"image_url"`
}

// List is a user-curated Discogs list.
type List struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Public      bool       `json:"public"`
	URI         string     `json:"uri"`
	Items       []ListItem `json:"items"`
}

// Releases returns the release entries of the list as wanted releases.
// Other item types (masters, artists, labels) are skipped.
func (l *List) Releases() []domain.Release {
	out := make([]domain.Release, 0, len(l.Items))
	for _, item := range l.Items {
		if item.Type != "" && item.Type != "release" {
			continue
		}
		out = append(out, domain.Release{
			ID:           item.ID,
			DisplayTitle: item.DisplayTitle,
			Comment:      item.Comment,
		})
	}
	return out
}

// Price is an amount in a named currency as the API reports it.
type Price struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// ReleaseStats is the marketplace summary of a release.
type ReleaseStats struct {
	NumForSale      int    `json:"num_for_sale"`
	LowestPrice     *Price `json:"lowest_price"`
	BlockedFromSale bool   `json:"blocked_from_sale"`
}

// Summary formats the stats for display, e.g. "3 from 12.50 EUR".
func (s *ReleaseStats) Summary() string {
	switch {
	case s.BlockedFromSale:
		return "blocked"
	case s.NumForSale == 0 || s.LowestPrice == nil:
		return strconv.Itoa(s.NumForSale)
	default:
		return fmt.Sprintf("%d from %.2f %s", s.NumForSale, s.LowestPrice.Value, s.LowestPrice.Currency)
	}
}

// APIClient calls the authenticated Discogs API with a personal user token.
type APIClient struct {
	baseURL   string
	token     string
	userAgent string
	client    *http.Client
	rateLimit *RateLimit
}

// APIOption configures the APIClient.
type APIOption func(*APIClient)

// WithAPIURL overrides the API root.
func WithAPIURL(u string) APIOption {
	return func(c *APIClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIHTTPClient overrides the default HTTP client.
func WithAPIHTTPClient(hc *http.Client) APIOption {
	return func(c *APIClient) {
		c.client = hc
	}
}

// WithAPIUserAgent sets the User-Agent header. Discogs rejects requests
// without one.
func WithAPIUserAgent(ua string) APIOption {
	return func(c *APIClient) {
		c.userAgent = ua
	}
}

// WithAPIRateLimit shares a rate limit tracker with the client.
func WithAPIRateLimit(r *RateLimit) APIOption {
	return func(c *APIClient) {
		c.rateLimit = r
	}
}

// NewAPIClient creates an API client authenticating with token.
func NewAPIClient(token string, opts ...APIOption) *APIClient {
	c := &APIClient{
		baseURL:   DefaultAPIURL,
		token:     token,
		userAgent: DefaultUserAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
		rateLimit: NewRateLimit(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimit returns the tracker fed by this client's responses.
func (c *APIClient) RateLimit() *RateLimit {
	return c.rateLimit
}

// GetList fetches a user list with its items.
func (c *APIClient) GetList(ctx context.Context, listID int64) (*List, error) {
	var l List
	if err := c.get(ctx, "list", "/lists/"+strconv.FormatInt(listID, 10), &l); err != nil {
		return nil, fmt.Errorf("getting list %d: %w", listID, err)
	}
	return &l, nil
}

// GetReleaseStats fetches the marketplace summary of a release.
func (c *APIClient) GetReleaseStats(ctx context.Context, releaseID int64) (*ReleaseStats, error) {
	var s ReleaseStats
	if err := c.get(ctx, "stats", "/marketplace/stats/"+strconv.FormatInt(releaseID, 10), &s); err != nil {
		return nil, fmt.Errorf("getting stats for release %d: %w", releaseID, err)
	}
	return &s, nil
}

func (c *APIClient) get(ctx context.Context, kind, path string, dst any) error {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return err
	}

	q := url.Values{}
	if c.token != "" {
		q.Set("token", c.token)
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.DiscogsRequestsTotal.WithLabelValues(kind, "error").Inc()
		return wrapTransport("sending request", err)
	}
	defer resp.Body.Close()

	metrics.DiscogsRequestsTotal.WithLabelValues(kind, strconv.Itoa(resp.StatusCode)).Inc()
	c.rateLimit.Update(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("discogs API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

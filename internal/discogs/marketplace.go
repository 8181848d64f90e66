package discogs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

const (
	// DefaultMarketplaceURL is the public Discogs website.
	DefaultMarketplaceURL = "https://www.discogs.com"
	// DefaultUserAgent identifies the scraper to Discogs.
	DefaultUserAgent = "discogs-alert/1.0 +https://github.com/donaldgifford/discogs-alert"

	maxPageBytes = 8 << 20
)

// MarketplaceClient implements ListingSource by scraping the public
// "for sale" page of a release.
type MarketplaceClient struct {
	baseURL     string
	userAgent   string
	client      *http.Client
	rateLimiter *RateLimiter
	log         *slog.Logger
}

// MarketplaceOption configures the MarketplaceClient.
type MarketplaceOption func(*MarketplaceClient)

// WithMarketplaceURL overrides the website root, mostly for tests.
func WithMarketplaceURL(u string) MarketplaceOption {
	return func(c *MarketplaceClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMarketplaceHTTPClient overrides the default HTTP client.
func WithMarketplaceHTTPClient(hc *http.Client) MarketplaceOption {
	return func(c *MarketplaceClient) {
		c.client = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every page request.
func WithUserAgent(ua string) MarketplaceOption {
	return func(c *MarketplaceClient) {
		c.userAgent = ua
	}
}

// WithMarketplaceRateLimiter paces page requests. When set, every
// Listings call goes through Wait first.
func WithMarketplaceRateLimiter(r *RateLimiter) MarketplaceOption {
	return func(c *MarketplaceClient) {
		c.rateLimiter = r
	}
}

// WithMarketplaceLogger sets the logger used for per-row parse failures.
func WithMarketplaceLogger(l *slog.Logger) MarketplaceOption {
	return func(c *MarketplaceClient) {
		c.log = l
	}
}

// NewMarketplaceClient creates a marketplace scraper.
func NewMarketplaceClient(opts ...MarketplaceOption) *MarketplaceClient {
	c := &MarketplaceClient{
		baseURL:   DefaultMarketplaceURL,
		userAgent: DefaultUserAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReleaseURL returns the marketplace page of a release, cheapest first.
func (c *MarketplaceClient) ReleaseURL(releaseID int64) string {
	return c.baseURL + "/sell/release/" + strconv.FormatInt(releaseID, 10) + "?ev=rb&sort=price%2Casc"
}

// Listings implements ListingSource. Rows that fail to parse are logged
// and counted but do not fail the call.
func (c *MarketplaceClient) Listings(ctx context.Context, releaseID int64) ([]domain.Listing, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReleaseURL(releaseID), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.DiscogsRequestsTotal.WithLabelValues("marketplace", "error").Inc()
		return nil, wrapTransport(fmt.Sprintf("fetching marketplace page for release %d", releaseID), err)
	}
	defer resp.Body.Close()

	metrics.DiscogsRequestsTotal.WithLabelValues("marketplace", strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("release %d: %w", releaseID, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("marketplace error (status %d) for release %d: %s",
			resp.StatusCode, releaseID, strings.TrimSpace(string(snippet)))
	}

	listings, rowErrs, err := ParseListings(io.LimitReader(resp.Body, maxPageBytes), releaseID)
	if err != nil {
		return nil, err
	}
	for _, rowErr := range rowErrs {
		metrics.ListingParseErrorsTotal.Inc()
		c.log.Warn("skipping unparseable listing",
			"release_id", releaseID,
			"error", rowErr,
		)
	}

	c.log.Debug("fetched marketplace listings",
		"release_id", releaseID,
		"listings", len(listings),
		"skipped_rows", len(rowErrs),
	)

	return listings, nil
}

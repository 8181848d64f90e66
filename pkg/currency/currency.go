// Package currency normalizes listing prices into a single target currency.
package currency

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	xcurrency "golang.org/x/text/currency"

	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// DefaultTTL is how long a fetched rate table stays valid.
const DefaultTTL = time.Hour

// DefaultFailureTTL is how long a failed fetch is remembered before the
// provider is asked again.
const DefaultFailureTTL = time.Minute

// ErrUnsupportedCurrency is returned when a currency code is not in the
// supported set or the rate table does not carry it.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Supported is the set of ISO codes the exchange rate provider quotes.
var Supported = map[string]struct{}{
	"AUD": {}, "BGN": {}, "BRL": {}, "CAD": {}, "CHF": {}, "CNY": {}, "CZK": {},
	"DKK": {}, "EUR": {}, "GBP": {}, "HKD": {}, "HRK": {}, "HUF": {}, "IDR": {},
	"ILS": {}, "INR": {}, "ISK": {}, "JPY": {}, "KRW": {}, "MXN": {}, "MYR": {},
	"NOK": {}, "NZD": {}, "PHP": {}, "PLN": {}, "RON": {}, "RUB": {}, "SEK": {},
	"SGD": {}, "THB": {}, "TRY": {}, "USD": {}, "ZAR": {},
}

// Symbols maps the price prefixes shown on marketplace pages to ISO codes.
var Symbols = map[string]string{
	"€":   "EUR",
	"£":   "GBP",
	"$":   "USD",
	"¥":   "JPY",
	"A$":  "AUD",
	"CA$": "CAD",
	"MX$": "MXN",
	"NZ$": "NZD",
	"B$":  "BRL",
	"CHF": "CHF",
	"SEK": "SEK",
	"ZAR": "ZAR",
}

// SupportedCodes returns the supported codes in sorted order.
func SupportedCodes() []string {
	out := make([]string, 0, len(Supported))
	for code := range Supported {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// IsSupported reports whether code is in the supported set.
func IsSupported(code string) bool {
	_, ok := Supported[code]
	return ok
}

// Normalize upper-cases code and checks that it is both a valid ISO 4217
// code and one the rate provider quotes.
func Normalize(code string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	unit, err := xcurrency.ParseISO(upper)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	iso := unit.String()
	if !IsSupported(iso) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return iso, nil
}

// Rates maps a currency code to how many units of it buy one unit of the
// base currency.
type Rates map[string]float64

// RateProvider fetches a rate table for a base currency.
type RateProvider interface {
	Rates(ctx context.Context, base string) (Rates, error)
}

// CacheObserver is notified of rate cache hits and misses.
type CacheObserver func(hit bool)

type cacheEntry struct {
	rates   Rates
	err     error
	expires time.Time
}

// Converter converts prices using rates from a RateProvider, caching one
// table per base currency.
type Converter struct {
	provider   RateProvider
	ttl        time.Duration
	failureTTL time.Duration
	nowFunc    func() time.Time
	observe    CacheObserver

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// Option configures a Converter.
type Option func(*Converter)

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Converter) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithFailureTTL overrides how long a failed fetch is remembered. Zero
// disables failure caching.
func WithFailureTTL(ttl time.Duration) Option {
	return func(c *Converter) {
		if ttl >= 0 {
			c.failureTTL = ttl
		}
	}
}

// WithNowFunc sets a custom time function (for testing).
func WithNowFunc(fn func() time.Time) Option {
	return func(c *Converter) {
		c.nowFunc = fn
	}
}

// WithCacheObserver registers a callback for cache hits and misses.
func WithCacheObserver(fn CacheObserver) Option {
	return func(c *Converter) {
		c.observe = fn
	}
}

// NewConverter creates a Converter backed by provider.
func NewConverter(provider RateProvider, opts ...Option) *Converter {
	c := &Converter{
		provider:   provider,
		ttl:        DefaultTTL,
		failureTTL: DefaultFailureTTL,
		nowFunc:    time.Now,
		cache:      make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rates returns the rate table for target, fetching it when the cached copy
// is missing or expired. The lock is held across the fetch so concurrent
// callers for the same window share one request. A failed fetch is
// replayed to callers until the failure TTL passes.
func (c *Converter) Rates(ctx context.Context, target string) (Rates, error) {
	if !IsSupported(target) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, target)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	if entry, ok := c.cache[target]; ok && now.Before(entry.expires) {
		c.record(true)
		return entry.rates, entry.err
	}
	c.record(false)

	rates, err := c.provider.Rates(ctx, target)
	if err != nil {
		err = fmt.Errorf("fetching %s rates: %w", target, err)
		// Cancellation belongs to this caller, not to the provider.
		if c.failureTTL > 0 && ctx.Err() == nil {
			c.cache[target] = cacheEntry{err: err, expires: now.Add(c.failureTTL)}
		} else {
			delete(c.cache, target)
		}
		return nil, err
	}
	c.cache[target] = cacheEntry{rates: rates, expires: now.Add(c.ttl)}
	return rates, nil
}

func (c *Converter) record(hit bool) {
	if c.observe != nil {
		c.observe(hit)
	}
}

// Convert converts value from one currency to another.
func (c *Converter) Convert(ctx context.Context, value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}
	rates, err := c.Rates(ctx, to)
	if err != nil {
		return 0, err
	}
	rate, ok := rates[from]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: no %s rate for %s", ErrUnsupportedCurrency, to, from)
	}
	return value / rate, nil
}

// ConvertPrice returns a copy of price expressed entirely in target. Item
// and shipping parts are converted independently.
func (c *Converter) ConvertPrice(
	ctx context.Context,
	price domain.ListingPrice,
	target string,
) (domain.ListingPrice, error) {
	out := domain.ListingPrice{Currency: target, Value: price.Value}

	if price.Currency != target {
		v, err := c.Convert(ctx, price.Value, price.Currency, target)
		if err != nil {
			return domain.ListingPrice{}, fmt.Errorf("converting item price: %w", err)
		}
		out.Value = v
	}

	if price.Shipping != nil {
		ship := domain.ShippingPrice{Currency: target, Value: price.Shipping.Value}
		if price.Shipping.Currency != target {
			v, err := c.Convert(ctx, price.Shipping.Value, price.Shipping.Currency, target)
			if err != nil {
				return domain.ListingPrice{}, fmt.Errorf("converting shipping price: %w", err)
			}
			ship.Value = v
		}
		out.Shipping = &ship
	}

	return out, nil
}

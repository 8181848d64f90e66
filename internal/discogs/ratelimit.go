package discogs

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
)

// RateLimiter paces marketplace page requests with a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter allowing perSecond requests with
// the given burst. A non-positive rate disables pacing.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until the next request is allowed, or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// apiWindow is the length of the Discogs API rate limit window.
const apiWindow = 60 * time.Second

// RateLimit tracks the X-Discogs-Ratelimit headers of API responses. When
// the remaining allowance drops to one, Wait sleeps until the window
// resets.
type RateLimit struct {
	mu        sync.Mutex
	limit     int
	used      int
	remaining int
	seen      bool
	updatedAt time.Time

	nowFunc func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// RateLimitOption configures a RateLimit.
type RateLimitOption func(*RateLimit)

// WithRateLimitNowFunc overrides the time function for testing.
func WithRateLimitNowFunc(f func() time.Time) RateLimitOption {
	return func(r *RateLimit) {
		r.nowFunc = f
	}
}

// WithRateLimitSleep overrides the sleep function for testing.
func WithRateLimitSleep(f func(ctx context.Context, d time.Duration) error) RateLimitOption {
	return func(r *RateLimit) {
		r.sleep = f
	}
}

// NewRateLimit creates an empty tracker.
func NewRateLimit(opts ...RateLimitOption) *RateLimit {
	r := &RateLimit{
		nowFunc: time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Update records the rate limit headers of a response. Responses without
// the headers are ignored.
func (r *RateLimit) Update(h http.Header) {
	limit, errL := strconv.Atoi(h.Get("X-Discogs-Ratelimit"))
	used, errU := strconv.Atoi(h.Get("X-Discogs-Ratelimit-Used"))
	remaining, errR := strconv.Atoi(h.Get("X-Discogs-Ratelimit-Remaining"))
	if errL != nil || errU != nil || errR != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit, r.used, r.remaining = limit, used, remaining
	r.seen = true
	r.updatedAt = r.nowFunc()
}

// Snapshot returns the last recorded limit, used and remaining counts.
func (r *RateLimit) Snapshot() (limit, used, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit, r.used, r.remaining
}

// Wait sleeps until the current window resets if the allowance is nearly
// spent. The window is assumed to start at the last update.
func (r *RateLimit) Wait(ctx context.Context) error {
	r.mu.Lock()
	if !r.seen || r.remaining > 1 {
		r.mu.Unlock()
		return nil
	}
	wait := apiWindow - r.nowFunc().Sub(r.updatedAt)
	r.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	metrics.RateLimitWaitsTotal.WithLabelValues("discogs").Inc()
	if err := r.sleep(ctx, wait); err != nil {
		return fmt.Errorf("waiting for discogs rate limit: %w", err)
	}

	r.mu.Lock()
	r.remaining = r.limit
	r.used = 0
	r.mu.Unlock()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

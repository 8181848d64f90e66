package discogs_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/discogs-alert/internal/discogs"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rate  float64
		burst int
		calls int
	}{
		{name: "allows calls within rate", rate: 100, burst: 10, calls: 3},
		{name: "allows burst", rate: 100, burst: 5, calls: 5},
		{name: "unlimited when rate is zero", rate: 0, burst: 0, calls: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := discogs.NewRateLimiter(tt.rate, tt.burst)
			for range tt.calls {
				require.NoError(t, rl.Wait(context.Background()))
			}
		})
	}
}

func TestRateLimiter_ContextCanceled(t *testing.T) {
	t.Parallel()

	rl := discogs.NewRateLimiter(0.001, 1)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
}

type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	return s.err
}

func headers(limit, used, remaining string) http.Header {
	h := http.Header{}
	h.Set("X-Discogs-Ratelimit", limit)
	h.Set("X-Discogs-Ratelimit-Used", used)
	h.Set("X-Discogs-Ratelimit-Remaining", remaining)
	return h
}

func TestRateLimit_Wait(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		header    http.Header
		elapsed   time.Duration
		wantSleep []time.Duration
	}{
		{name: "no headers seen yet", header: http.Header{}},
		{name: "plenty remaining", header: headers("60", "10", "50")},
		{
			name:      "last request left sleeps out the window",
			header:    headers("60", "59", "1"),
			elapsed:   15 * time.Second,
			wantSleep: []time.Duration{45 * time.Second},
		},
		{
			name:      "exhausted sleeps out the window",
			header:    headers("60", "60", "0"),
			wantSleep: []time.Duration{60 * time.Second},
		},
		{
			name:    "window already passed",
			header:  headers("60", "59", "1"),
			elapsed: 2 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			now := base
			rec := &sleepRecorder{}
			rl := discogs.NewRateLimit(
				discogs.WithRateLimitNowFunc(func() time.Time { return now }),
				discogs.WithRateLimitSleep(rec.sleep),
			)

			rl.Update(tt.header)
			now = base.Add(tt.elapsed)

			require.NoError(t, rl.Wait(context.Background()))
			assert.Equal(t, tt.wantSleep, rec.slept)
		})
	}
}

func TestRateLimit_ResumesAfterSleep(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{}
	rl := discogs.NewRateLimit(discogs.WithRateLimitSleep(rec.sleep))
	rl.Update(headers("60", "60", "0"))

	require.NoError(t, rl.Wait(context.Background()))
	_, used, remaining := rl.Snapshot()
	assert.Equal(t, 0, used)
	assert.Equal(t, 60, remaining)

	// A second wait must not sleep again.
	require.NoError(t, rl.Wait(context.Background()))
	assert.Len(t, rec.slept, 1)
}

func TestRateLimit_SleepInterrupted(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{err: context.Canceled}
	rl := discogs.NewRateLimit(discogs.WithRateLimitSleep(rec.sleep))
	rl.Update(headers("60", "60", "0"))

	err := rl.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "waiting for discogs rate limit")
}

func TestRateLimit_IgnoresPartialHeaders(t *testing.T) {
	t.Parallel()

	rl := discogs.NewRateLimit()
	h := http.Header{}
	h.Set("X-Discogs-Ratelimit", "60")
	rl.Update(h)

	limit, used, remaining := rl.Snapshot()
	assert.Zero(t, limit)
	assert.Zero(t, used)
	assert.Zero(t, remaining)
}

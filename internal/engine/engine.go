// Package engine runs poll cycles: load the wantlist, fetch and filter
// marketplace listings, and notify about new matches.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/discogs-alert/internal/discogs"
	"github.com/donaldgifford/discogs-alert/internal/metrics"
	"github.com/donaldgifford/discogs-alert/internal/notify"
	"github.com/donaldgifford/discogs-alert/internal/tracing"
	"github.com/donaldgifford/discogs-alert/internal/wantlist"
	"github.com/donaldgifford/discogs-alert/pkg/filter"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// ErrCycleRunning is returned by TryRun when another cycle holds the lock.
var ErrCycleRunning = errors.New("a cycle is already running")

// RateWaiter blocks until the next upstream request is allowed.
type RateWaiter interface {
	Wait(ctx context.Context) error
}

// Engine orchestrates one poll cycle at a time.
type Engine struct {
	wantlist wantlist.Source
	listings discogs.ListingSource
	filter   *filter.Filter
	notifier notify.Notifier
	waiter   RateWaiter
	log      *slog.Logger
	tracer   trace.Tracer
	rng      *rand.Rand
	nowFunc  func() time.Time

	// mu serializes cycles. rng is only touched while it is held.
	mu sync.Mutex

	reportMu sync.RWMutex
	last     *domain.CycleReport
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	w wantlist.Source,
	l discogs.ListingSource,
	f *filter.Filter,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		wantlist: w,
		listings: l,
		filter:   f,
		notifier: n,
		log:      slog.Default(),
		tracer:   tracing.Tracer(),
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithRand sets the source used to shuffle the wantlist.
func WithRand(r *rand.Rand) EngineOption {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithRateWaiter makes the engine wait on w before each release.
func WithRateWaiter(w RateWaiter) EngineOption {
	return func(e *Engine) {
		e.waiter = w
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(fn func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = fn
	}
}

// WithTracer overrides the tracer.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// RunCycle runs a full cycle, waiting for any running cycle to finish
// first.
func (eng *Engine) RunCycle(ctx context.Context) error {
	_, err := eng.Run(ctx)
	return err
}

// Run is RunCycle that also returns the cycle report.
func (eng *Engine) Run(ctx context.Context) (domain.CycleReport, error) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.runLocked(ctx)
}

// TryRun runs a cycle unless one is already in progress, in which case it
// returns ErrCycleRunning immediately.
func (eng *Engine) TryRun(ctx context.Context) (domain.CycleReport, error) {
	if !eng.mu.TryLock() {
		return domain.CycleReport{}, ErrCycleRunning
	}
	defer eng.mu.Unlock()
	return eng.runLocked(ctx)
}

// LastReport returns the report of the most recent finished cycle.
func (eng *Engine) LastReport() (domain.CycleReport, bool) {
	eng.reportMu.RLock()
	defer eng.reportMu.RUnlock()
	if eng.last == nil {
		return domain.CycleReport{}, false
	}
	return *eng.last, true
}

// Ping checks that the wantlist can be loaded. It is used for readiness.
func (eng *Engine) Ping(ctx context.Context) error {
	if _, err := eng.wantlist.Load(ctx); err != nil {
		return fmt.Errorf("loading wantlist: %w", err)
	}
	return nil
}

func (eng *Engine) runLocked(ctx context.Context) (domain.CycleReport, error) {
	start := eng.nowFunc()
	report := domain.CycleReport{
		ID:        uuid.NewString(),
		StartedAt: start,
	}

	ctx, span := eng.tracer.Start(ctx, "engine.cycle",
		trace.WithAttributes(attribute.String("cycle.id", report.ID)))
	defer span.End()

	log := eng.log.With("cycle_id", report.ID)
	log.Info("cycle starting")

	err := eng.cycle(ctx, log, &report)

	report.Duration = eng.nowFunc().Sub(start)
	outcome := "success"
	if err != nil {
		report.Error = err.Error()
		outcome = "failed"
		if report.Aborted {
			outcome = "aborted"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	metrics.CycleDuration.Observe(report.Duration.Seconds())
	metrics.CyclesTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		metrics.CycleLastSuccessTimestamp.Set(float64(eng.nowFunc().Unix()))
	}

	span.SetAttributes(
		attribute.Int("cycle.releases", report.Releases),
		attribute.Int("cycle.listings", report.Listings),
		attribute.Int("cycle.notified", report.Notified),
	)

	eng.reportMu.Lock()
	eng.last = &report
	eng.reportMu.Unlock()

	attrs := []any{
		"outcome", outcome,
		"releases", report.Releases,
		"listings", report.Listings,
		"accepted", report.Accepted,
		"notified", report.Notified,
		"duplicates", report.Duplicates,
		"skipped", report.Skipped,
		"failed_sends", report.FailedSends,
		"duration", report.Duration,
	}
	if err != nil {
		log.Error("cycle finished", append(attrs, "error", err)...)
	} else {
		log.Info("cycle finished", attrs...)
	}

	return report, err
}

func (eng *Engine) cycle(ctx context.Context, log *slog.Logger, report *domain.CycleReport) error {
	releases, err := eng.wantlist.Load(ctx)
	if err != nil {
		report.Aborted = domain.IsConnectivity(err)
		return fmt.Errorf("loading wantlist: %w", err)
	}
	report.Releases = len(releases)

	history, err := eng.notifier.ListSent(ctx)
	if err != nil {
		report.Aborted = domain.IsConnectivity(err)
		return fmt.Errorf("loading notification history: %w", err)
	}
	if history == nil {
		history = notify.NewHistory()
	}
	log.Debug("loaded notification history", "entries", history.Len())

	// Shuffled so a cycle cut short by an outage does not always starve
	// the same releases.
	eng.rng.Shuffle(len(releases), func(i, j int) {
		releases[i], releases[j] = releases[j], releases[i]
	})

	for i := range releases {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			return err
		}

		r := &releases[i]
		if err := eng.processRelease(ctx, log, r, history, report); err != nil {
			if isFatal(err) {
				report.Aborted = true
				return fmt.Errorf("release %d: %w", r.ID, err)
			}
			report.Skipped++
			metrics.ReleasesSkippedTotal.Inc()
			log.Warn("skipping release",
				"release_id", r.ID,
				"title", r.DisplayTitle,
				"error", err,
			)
		}
	}

	return nil
}

func (eng *Engine) processRelease(
	ctx context.Context,
	log *slog.Logger,
	r *domain.Release,
	history notify.History,
	report *domain.CycleReport,
) error {
	ctx, span := eng.tracer.Start(ctx, "engine.release",
		trace.WithAttributes(attribute.Int64("release.id", r.ID)))
	defer span.End()

	if eng.waiter != nil {
		if err := eng.waiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	listings, err := eng.listings.Listings(ctx, r.ID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("fetching listings: %w", err)
	}
	report.Listings += len(listings)
	span.SetAttributes(attribute.Int("release.listings", len(listings)))

	matches, err := eng.evaluate(ctx, log, r, listings)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("evaluating listings: %w", err)
	}
	report.Accepted += len(matches)

	return eng.deliver(ctx, log, r, matches, history, report)
}

// isFatal reports whether err should end the cycle rather than skip one
// release.
func isFatal(err error) bool {
	return domain.IsConnectivity(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
)

// Scheduler runs poll cycles on a fixed interval. A tick that arrives
// while the previous cycle is still running is skipped.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger

	// ctx is cancelled by Stop so an in-flight cycle aborts promptly.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new Scheduler that runs a cycle every interval.
func NewScheduler(
	eng *Engine,
	interval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.runCycle); err != nil {
		cancel()
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled cycles.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.SyncNextRunTimestamp()
	s.log.Info("scheduler started", "next_run", s.NextRun())
}

// Stop stops scheduling and cancels a running cycle. The returned context
// is done once that cycle has returned.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	done := s.cron.Stop()
	s.cancel()
	return done
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns when the next cycle is due, or the zero time before
// Start.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// SyncNextRunTimestamp publishes the next run time as a gauge.
func (s *Scheduler) SyncNextRunTimestamp() {
	if next := s.NextRun(); !next.IsZero() {
		metrics.SchedulerNextCycleTimestamp.Set(float64(next.Unix()))
	}
}

func (s *Scheduler) runCycle() {
	defer s.SyncNextRunTimestamp()

	s.log.Info("scheduled cycle starting")
	// Errors were already logged with the cycle report; connectivity
	// failures are retried on the next tick.
	if err := s.engine.RunCycle(s.ctx); err != nil {
		s.log.Warn("scheduled cycle did not complete", "error", err)
	}
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

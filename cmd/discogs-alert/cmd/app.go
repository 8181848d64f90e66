package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/donaldgifford/discogs-alert/internal/config"
	"github.com/donaldgifford/discogs-alert/internal/discogs"
	"github.com/donaldgifford/discogs-alert/internal/engine"
	"github.com/donaldgifford/discogs-alert/internal/exchange"
	"github.com/donaldgifford/discogs-alert/internal/metrics"
	"github.com/donaldgifford/discogs-alert/internal/notify"
	"github.com/donaldgifford/discogs-alert/internal/tracing"
	"github.com/donaldgifford/discogs-alert/internal/wantlist"
	"github.com/donaldgifford/discogs-alert/pkg/currency"
	"github.com/donaldgifford/discogs-alert/pkg/filter"
)

// app holds the wired dependencies shared by run and check.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	wantlist wantlist.Source
	api      *discogs.APIClient // nil for file wantlists
	engine   *engine.Engine

	logCloser io.Closer
	shutdown  tracing.ShutdownFunc
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, logCloser, err := newLogger(&cfg.Logging)
	if err != nil {
		return nil, err
	}

	shutdown, err := tracing.Setup(ctx, cfg.Tracing, Version)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		logCloser: logCloser,
		shutdown:  shutdown,
	}

	httpClient := tracing.HTTPClient(cfg.Discogs.Timeout)

	market := discogs.NewMarketplaceClient(
		discogs.WithMarketplaceURL(cfg.Discogs.MarketplaceURL),
		discogs.WithMarketplaceHTTPClient(httpClient),
		discogs.WithUserAgent(cfg.Discogs.UserAgent),
		discogs.WithMarketplaceRateLimiter(
			discogs.NewRateLimiter(cfg.Discogs.RequestsPerSecond, cfg.Discogs.Burst)),
		discogs.WithMarketplaceLogger(log),
	)

	engineOpts := []engine.EngineOption{engine.WithLogger(log)}

	if cfg.Discogs.ListID != 0 {
		a.api = discogs.NewAPIClient(cfg.Discogs.UserToken,
			discogs.WithAPIURL(cfg.Discogs.APIURL),
			discogs.WithAPIHTTPClient(httpClient),
			discogs.WithAPIUserAgent(cfg.Discogs.UserAgent),
		)
		a.wantlist = wantlist.NewListSource(a.api, cfg.Discogs.ListID)
		engineOpts = append(engineOpts, engine.WithRateWaiter(a.api.RateLimit()))
	} else {
		a.wantlist = wantlist.NewFileSource(cfg.Discogs.WantlistPath)
	}

	converter := currency.NewConverter(
		exchange.New(cfg.Currency.RatesURL, exchange.WithHTTPClient(httpClient)),
		currency.WithTTL(cfg.Currency.CacheTTL),
		currency.WithCacheObserver(metrics.ObserveRateCache),
	)

	notifier, err := notify.New(&cfg.Notifications, httpClient, log)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("creating notifier: %w", err)
	}

	a.engine = engine.NewEngine(
		a.wantlist,
		market,
		filter.New(cfg.Criteria(), converter),
		notifier,
		engineOpts...,
	)

	log.Info("discogs-alert configured",
		"version", Version,
		"wantlist", wantlistDescription(cfg),
		"backend", notify.BackendName(notifier),
		"country", cfg.Filters.Country,
		"currency", cfg.Filters.Currency,
	)

	return a, nil
}

// Close flushes telemetry and closes the log file.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(a.shutdown(ctx), a.logCloser.Close())
}

func wantlistDescription(cfg *config.Config) string {
	if cfg.Discogs.ListID != 0 {
		return fmt.Sprintf("list %d", cfg.Discogs.ListID)
	}
	return cfg.Discogs.WantlistPath
}

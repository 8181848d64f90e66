package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/discogs-alert/api/openapi"
	"github.com/donaldgifford/discogs-alert/internal/api/handlers"
	"github.com/donaldgifford/discogs-alert/internal/api/middleware"
	"github.com/donaldgifford/discogs-alert/internal/engine"
)

const shutdownTimeout = 10 * time.Second

func runCmd() *cobra.Command {
	var once bool

	c := &cobra.Command{
		Use:   "run",
		Short: "Check the wantlist on a schedule and serve the API",
		Long: "run checks every release on the wantlist frequency times per hour and\n" +
			"sends a notification for each new matching listing. It also serves\n" +
			"/healthz, /readyz, /metrics and the cycle API.",
		Example: `  discogs-alert run --config config.yaml
  discogs-alert run --wantlist-path wantlist.yaml --frequency 4
  discogs-alert run --once`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if once {
				viper.Set("verbose", true)
				return runCheck(cmd)
			}
			return runServe(cmd)
		},
	}
	c.Flags().BoolVar(&once, "once", false, "run a single verbose cycle and exit")

	return c
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.Close(closeCtx)
	}()
	log := a.log

	sched, err := engine.NewScheduler(a.engine, cfg.Schedule.Interval(), log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := newServer(a)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sched.Start()
	log.Info("scheduler started", "interval", cfg.Schedule.Interval())

	select {
	case <-ctx.Done():
	case err = <-serverErr:
		log.Error("server error", "error", err)
	}

	log.Info("shutting down")

	<-sched.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("shutting down server: %w", shutdownErr)
	}

	log.Info("stopped")
	return err
}

func newServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.Recovery(a.log),
		middleware.RequestLog(a.log),
		middleware.Metrics(),
	)

	health := handlers.NewHealthHandler(a.engine)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	humaCfg := huma.DefaultConfig("discogs-alert", Version)
	humaCfg.OpenAPIPath = "/openapi"
	humaCfg.DocsPath = ""
	api := humaecho.New(e, humaCfg)

	handlers.RegisterCycleRoutes(api, handlers.NewCycleHandler(a.engine))
	handlers.RegisterWantlistRoutes(api, handlers.NewWantlistHandler(a.wantlist))
	openapi.RegisterRoutes(e)

	return e
}

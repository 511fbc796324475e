package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/train-countdown/countdown/internal/config"
	"github.com/train-countdown/countdown/internal/countdown"
	"github.com/train-countdown/countdown/internal/db"
	"github.com/train-countdown/countdown/internal/display"
	"github.com/train-countdown/countdown/internal/fetcher"
	"github.com/train-countdown/countdown/internal/metrics"
	"github.com/train-countdown/countdown/internal/ptv"
	"github.com/train-countdown/countdown/internal/render"
	"github.com/train-countdown/countdown/internal/status"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "run the countdown until interrupted",
		Action: runCountdown,
	}
}

func runCountdown(c *cli.Context) error {
	log.Info().Msg("Starting countdown service...")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	log.Info().
		Int("stop", cfg.StopID).
		Int("direction", cfg.DirectionID).
		Int("route_type", cfg.RouteType).
		Dur("poll_interval", cfg.PollInterval).
		Int("retry_attempts", cfg.RetryAttempts).
		Dur("retry_delay", cfg.RetryDelay).
		Msg("Config loaded")

	// ═══════════════════════════════════════════════════════
	// PHASE 1: Fetch-cycle log (optional)
	// ═══════════════════════════════════════════════════════
	var (
		recorder fetcher.Recorder
		cycleLog status.CycleCounter
	)
	if cfg.DatabasePath != "" {
		database, err := openCycleLog(c.Context, cfg)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.DatabasePath).Msg("Fetch-cycle log disabled")
		} else {
			defer database.Close()
			recorder = db.NewRecorder(database, cfg.RetentionDuration)
			cycleLog = database
			log.Info().Str("path", cfg.DatabasePath).Dur("retention", cfg.RetentionDuration).Msg("Fetch-cycle log initialized")
		}
	}

	// ═══════════════════════════════════════════════════════
	// PHASE 2: Initialize Display
	// ═══════════════════════════════════════════════════════
	collector := metrics.NewCollector()
	store := countdown.NewStore(time.Now())

	dev, err := display.Open(display.Config{
		Driver:  display.Driver(cfg.DisplayDriver),
		Width:   cfg.DisplayWidth,
		Height:  cfg.DisplayHeight,
		PNGPath: cfg.DisplayPNGPath,
	})
	if err != nil {
		return fmt.Errorf("failed to open display: %w", err)
	}

	renderer, err := render.New(dev, store, render.Config{
		Width:    cfg.DisplayWidth,
		Height:   cfg.DisplayHeight,
		FontSize: cfg.FontSize,
		Interval: time.Second,
	}, render.WithMetrics(collector))
	if err != nil {
		dev.Shutdown()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer renderer.Close()

	if err := renderer.Start(); err != nil {
		return fmt.Errorf("display initialization failed: %w", err)
	}

	// ═══════════════════════════════════════════════════════
	// PHASE 3: Initialize Fetcher
	// ═══════════════════════════════════════════════════════
	client := ptv.NewClient(cfg.BaseURL, cfg.DevID, cfg.APIKey, cfg.RequestTimeout)

	strategy := fetcher.SelectFirst
	if cfg.SelectEarliest {
		strategy = fetcher.SelectEarliest
	}

	f := fetcher.New(client, store, fetcher.Config{
		StopID:       cfg.StopID,
		DirectionID:  cfg.DirectionID,
		RouteType:    ptv.RouteType(cfg.RouteType),
		MaxResults:   cfg.MaxResults,
		Strategy:     strategy,
		Interval:     cfg.PollInterval,
		CycleTimeout: cfg.CycleTimeout,
		Retry: fetcher.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
		},
	}, fetcher.WithMetrics(collector), fetcher.WithRecorder(recorder))

	// ═══════════════════════════════════════════════════════
	// PHASE 4: Start Loops
	// ═══════════════════════════════════════════════════════
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.Run(gctx) })
	g.Go(func() error { return renderer.Run(gctx) })

	if cfg.StatusEnabled {
		opts := []status.HandlerOption{status.WithStopID(cfg.StopID)}
		if cycleLog != nil {
			opts = append(opts, status.WithCycleLog(cycleLog))
		}
		handler := status.NewHandler(store, f, collector, cfg.PollInterval, opts...)
		router := status.NewRouter(handler, collector)
		g.Go(func() error {
			if err := status.Serve(gctx, cfg.StatusAddr, router); err != nil {
				log.Error().Err(err).Msg("Status server stopped")
			}
			return nil
		})
	}

	log.Info().Msg("Countdown running")

	// ═══════════════════════════════════════════════════════
	// PHASE 5: Graceful Shutdown
	// ═══════════════════════════════════════════════════════
	err = g.Wait()
	log.Info().Msg("Shutting down...")
	return err
}

func openCycleLog(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := db.Connect(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return database, nil
}

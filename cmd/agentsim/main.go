package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/hostile/internal/ai"
	"github.com/udisondev/hostile/internal/config"
	"github.com/udisondev/hostile/internal/db"
	"github.com/udisondev/hostile/internal/stream"
	"github.com/udisondev/hostile/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("agentsim starting",
		"config", cfgPath,
		"log_level", logLevel,
		"tick_rate", cfg.Simulation.TickRate,
		"workers", cfg.Simulation.Workers)

	sim, err := buildSimulation(cfg)
	if err != nil {
		return fmt.Errorf("building simulation: %w", err)
	}

	runID := strconv.FormatInt(time.Now().UnixNano(), 36)

	var database *db.DB
	if cfg.Database.Enabled {
		database, err = db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
	}

	runCtx := ctx
	if cfg.Simulation.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Simulation.Duration)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(runCtx)

	if database != nil {
		recorder := telemetry.NewRecorder(database.Events(), runID, telemetry.Config{
			BufferSize:    cfg.Telemetry.BufferSize,
			BatchSize:     cfg.Telemetry.BatchSize,
			FlushInterval: cfg.Telemetry.FlushInterval,
		})
		detach := recorder.Attach(sim.bus)
		g.Go(func() error {
			defer detach()
			slog.Info("starting telemetry recorder", "run", runID)
			return recorder.Run(gctx)
		})
	}

	if cfg.Stream.Enabled {
		hub := stream.NewHub(stream.Config{
			Address:   cfg.Stream.Address,
			Path:      cfg.Stream.Path,
			SendQueue: cfg.Stream.SendQueue,
		})
		detach := hub.Attach(sim.bus)
		g.Go(func() error {
			defer detach()
			if err := hub.Run(gctx); err != nil {
				return fmt.Errorf("event stream: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		slog.Info("starting agent tick manager", "agents", sim.manager.Count())
		err := sim.manager.Start(gctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("agent tick manager: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	sim.logSummary()

	if database != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := database.Runs().SaveSummaries(saveCtx, runID, sim.summaries()); err != nil {
			return fmt.Errorf("saving run summary: %w", err)
		}
		slog.Info("run summary saved", "run", runID)
	}

	slog.Info("agentsim stopped")
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/fpl-stats/internal/app"
	"github.com/riskibarqy/fpl-stats/internal/config"
	"github.com/riskibarqy/fpl-stats/internal/observability"
	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.NewJSON(logging.LevelError).Error("load config", "error", err)
		return 1
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	telemetry, err := observability.Start(cfg, logger)
	if err != nil {
		logger.Error("start telemetry", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			logger.Warn("shutdown telemetry", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector, err := app.NewCollector(ctx, cfg, logger)
	if err != nil {
		logger.Error("build collector", "error", err)
		return 1
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Warn("close collector", "error", err)
		}
	}()

	result, err := collector.Run(ctx)
	if err != nil {
		logger.Error("collection failed", "error", err)
		return 1
	}

	logger.Info("collection finished",
		"players", len(result.PlayerDetails),
		"failed_players", result.FailedPlayerDetails(),
		"fixtures", len(result.Fixtures.Items),
		"duration", result.Duration,
	)
	return 0
}

package observability

import (
	"context"
	"strings"

	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fpl-stats/internal/config"
	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
)

func noopShutdown(context.Context) error { return nil }

// startTracing installs the global OpenTelemetry providers exporting to
// Uptrace. Spans from the FPL client, the collector and the database share
// the run-level resource attributes.
func startTracing(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if !cfg.UptraceEnabled {
		logger.Debug("tracing disabled", "reason", "UPTRACE_ENABLED=false")
		return noopShutdown, nil
	}
	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Warn("tracing disabled", "reason", "UPTRACE_DSN empty")
		return noopShutdown, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(runAttributes(cfg)...),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)

	logger.Info("tracing enabled",
		"exporter", "uptrace",
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
		"storage_driver", cfg.StorageDriver,
	)
	return uptrace.Shutdown, nil
}

func runAttributes(cfg config.Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("fpl.base_url", cfg.FPLBaseURL),
		attribute.String("fpl.storage_driver", cfg.StorageDriver),
		attribute.Int("fpl.player_batch_size", cfg.FPLPlayerBatchSize),
	}
}

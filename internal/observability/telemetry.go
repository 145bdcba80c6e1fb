package observability

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fpl-stats/internal/config"
	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
)

// Telemetry owns the trace exporter and profiler of one collector run.
type Telemetry struct {
	shutdownTracing func(context.Context) error
	stopProfiler    func() error
}

// Start brings up tracing, then profiling. Disabled backends are no-ops.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}

	shutdownTracing, err := startTracing(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("start tracing: %w", err)
	}
	stopProfiler, err := startProfiling(cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, fmt.Errorf("start profiling: %w", err)
	}

	return &Telemetry{
		shutdownTracing: shutdownTracing,
		stopProfiler:    stopProfiler,
	}, nil
}

// Shutdown flushes pending spans and stops the profiler. Both always run.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return crerr.CombineErrors(t.shutdownTracing(ctx), t.stopProfiler())
}

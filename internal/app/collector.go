package app

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/fpl-stats/external/fpl"
	"github.com/riskibarqy/fpl-stats/internal/config"
	"github.com/riskibarqy/fpl-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fpl-stats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
	"github.com/riskibarqy/fpl-stats/internal/platform/resilience"
	"github.com/riskibarqy/fpl-stats/internal/usecase"
)

// Collector owns every resource of one collection run.
type Collector struct {
	service *usecase.CollectionService
	closers []func() error
}

func NewCollector(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Collector, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Collector{}
	client := fpl.NewClient(fpl.ClientConfig{
		BaseURL:      cfg.FPLBaseURL,
		Timeout:      cfg.FPLTimeout,
		RateLimitRPS: cfg.FPLRateLimitRPS,
		Logger:       logger.With("component", "fpl_client"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailureCount,
			OpenTimeout:      cfg.FPLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
		},
	})
	c.closers = append(c.closers, func() error {
		client.Close()
		return nil
	})

	sink, err := c.buildSink(ctx, cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.service = usecase.NewCollectionService(
		client,
		sink,
		usecase.CollectionConfig{PlayerBatchSize: cfg.FPLPlayerBatchSize},
		logger.With("component", "collector"),
	)
	return c, nil
}

func (c *Collector) Run(ctx context.Context) (usecase.CollectionResult, error) {
	return c.service.Collect(ctx)
}

// Close releases resources in reverse acquisition order.
func (c *Collector) Close() error {
	var combined error
	for i := len(c.closers) - 1; i >= 0; i-- {
		combined = crerr.CombineErrors(combined, c.closers[i]())
	}
	c.closers = nil
	return combined
}

func (c *Collector) buildSink(ctx context.Context, cfg config.Config, logger *logging.Logger) (usecase.CollectionSink, error) {
	if !cfg.PersistenceEnabled() {
		logger.InfoContext(ctx, "persistence disabled", "storage_driver", cfg.StorageDriver)
		return nil, nil
	}

	ingestionCfg := usecase.IngestionConfig{Workers: cfg.StorageWorkers}
	ingestionLogger := logger.With("component", "ingestion")

	switch cfg.StorageDriver {
	case config.StorageMemory:
		players := memory.NewPlayerRepository(nil)
		fixtures := memory.NewFixtureRepository(nil)
		return usecase.NewIngestionService(
			players,
			fixtures,
			memory.NewPerformanceRepository(players, fixtures),
			memory.NewRawDataRepository(),
			ingestionCfg,
			ingestionLogger,
		), nil
	case config.StoragePostgres:
		dsn, err := postgres.NormalizeDSN(cfg.DBURL, cfg.DBDisablePreparedBinary)
		if err != nil {
			return nil, fmt.Errorf("normalize DB_URL: %w", err)
		}
		db, err := openDB(ctx, dsn, cfg.StorageWorkers)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db.Close)

		if cfg.DBAutoMigrate {
			if err := postgres.InitSchema(ctx, dsn); err != nil {
				return nil, fmt.Errorf("init schema: %w", err)
			}
			logger.InfoContext(ctx, "database schema ready", "db_name", postgres.DatabaseName(dsn))
		}

		return usecase.NewIngestionService(
			postgres.NewPlayerRepository(db),
			postgres.NewFixtureRepository(db),
			postgres.NewPerformanceRepository(db),
			postgres.NewRawDataRepository(db),
			ingestionCfg,
			ingestionLogger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// openDB opens a traced pool sized for the ingestion workers plus the
// sequential player and fixture writers.
func openDB(ctx context.Context, dsn string, workers int) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(postgres.DatabaseName(dsn)),
		otelsql.WithQueryFormatter(postgres.TraceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(workers + 2)
	db.SetMaxIdleConns(workers)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

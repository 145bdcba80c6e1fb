package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/iter"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
)

const DefaultPlayerBatchSize = 10

type CollectionConfig struct {
	// PlayerBatchSize caps how many player detail documents one run fetches.
	PlayerBatchSize int
}

// CollectionSink receives a finished collection. IngestionService is the
// only production implementation.
type CollectionSink interface {
	Ingest(ctx context.Context, data CollectedData) (IngestionSummary, error)
}

type CollectedData struct {
	GeneralInfo   ExternalGeneralInfo
	Fixtures      ExternalFixtureList
	PlayerDetails []PlayerDetailResult
	FetchedAt     time.Time
}

type PlayerDetailResult struct {
	PlayerID int64
	Detail   ExternalPlayerDetail
	Err      error
}

func (r PlayerDetailResult) Failed() bool {
	return r.Err != nil
}

type CollectionResult struct {
	GeneralInfo   ExternalGeneralInfo
	Fixtures      ExternalFixtureList
	PlayerDetails []PlayerDetailResult
	Ingestion     *IngestionSummary
	Duration      time.Duration
}

func (r CollectionResult) FailedPlayerDetails() int {
	failed := 0
	for _, item := range r.PlayerDetails {
		if item.Failed() {
			failed++
		}
	}
	return failed
}

type CollectionService struct {
	provider  StatsProvider
	sink      CollectionSink
	batchSize int
	logger    *logging.Logger
	now       func() time.Time
}

func NewCollectionService(provider StatsProvider, sink CollectionSink, cfg CollectionConfig, logger *logging.Logger) *CollectionService {
	if logger == nil {
		logger = logging.Default()
	}
	batchSize := cfg.PlayerBatchSize
	if batchSize < 1 {
		batchSize = DefaultPlayerBatchSize
	}
	return &CollectionService{
		provider:  provider,
		sink:      sink,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Collect runs one collection pass: general info and fixtures first, then
// player details for the first batch of players, concurrently.
func (s *CollectionService) Collect(ctx context.Context) (CollectionResult, error) {
	ctx, span := startSpan(ctx, "usecase.CollectionService.Collect", true)
	defer span.End()

	started := s.now()

	generalInfo, generalErr := s.provider.FetchGeneralInfo(ctx)
	fixtures, fixturesErr := s.provider.FetchFixtures(ctx)
	if generalErr != nil || fixturesErr != nil || generalInfo.IsEmpty() || fixtures.IsEmpty() {
		s.logger.ErrorContext(ctx, "failed to fetch general info or fixtures",
			"general_info_error", generalErr,
			"fixtures_error", fixturesErr,
			"general_info_empty", generalInfo.IsEmpty(),
			"fixtures_empty", fixtures.IsEmpty(),
		)
		err := fmt.Errorf("%w: %w", ErrCollectionAborted, abortCause(generalErr, fixturesErr))
		failSpan(span, err, ErrCollectionAborted.Error())
		return CollectionResult{}, err
	}

	ids := generalInfo.PlayerIDs()
	if len(ids) > s.batchSize {
		ids = ids[:s.batchSize]
	}

	details := s.fetchPlayerDetails(ctx, ids)
	result := CollectionResult{
		GeneralInfo:   generalInfo,
		Fixtures:      fixtures,
		PlayerDetails: details,
	}

	failed := result.FailedPlayerDetails()
	s.logger.InfoContext(ctx, "collected player details", "players", len(details), "failed", failed)
	s.logger.InfoContext(ctx, "collected fixtures", "fixtures", len(fixtures.Items))
	span.SetAttributes(
		attribute.Int("fpl.players.requested", len(ids)),
		attribute.Int("fpl.players.failed", failed),
		attribute.Int("fpl.fixtures", len(fixtures.Items)),
	)

	if s.sink != nil {
		summary, err := s.sink.Ingest(ctx, CollectedData{
			GeneralInfo:   generalInfo,
			Fixtures:      fixtures,
			PlayerDetails: details,
			FetchedAt:     started,
		})
		if err != nil {
			failSpan(span, err, "ingest collection")
			return result, fmt.Errorf("ingest collection: %w", err)
		}
		result.Ingestion = &summary
	}

	result.Duration = s.now().Sub(started)
	return result, nil
}

// fetchPlayerDetails keeps one entry per id, in id order. Failed fetches are
// reported in the entry instead of failing the batch.
func (s *CollectionService) fetchPlayerDetails(ctx context.Context, ids []int64) []PlayerDetailResult {
	if len(ids) == 0 {
		return []PlayerDetailResult{}
	}

	mapper := iter.Mapper[int64, PlayerDetailResult]{MaxGoroutines: len(ids)}
	return mapper.Map(ids, func(id *int64) PlayerDetailResult {
		ctx, span := startSpan(ctx, "usecase.CollectionService.fetchPlayerDetail", false)
		defer span.End()

		detail, err := s.provider.FetchPlayerDetail(ctx, *id)
		if err != nil {
			failSpan(span, err, "fetch player detail")
			return PlayerDetailResult{PlayerID: *id, Detail: ExternalPlayerDetail{PlayerExternalID: *id}, Err: err}
		}
		return PlayerDetailResult{PlayerID: *id, Detail: detail}
	})
}

var errEmptyPayload = crerr.New("empty payload")

func abortCause(generalErr, fixturesErr error) error {
	if cause := crerr.CombineErrors(generalErr, fixturesErr); cause != nil {
		return cause
	}
	return errEmptyPayload
}

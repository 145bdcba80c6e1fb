package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fpl-stats/internal/domain/fixture"
	"github.com/riskibarqy/fpl-stats/internal/domain/performance"
	"github.com/riskibarqy/fpl-stats/internal/domain/player"
	"github.com/riskibarqy/fpl-stats/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
)

const rawDataSourceFPL = "fpl"

type IngestionConfig struct {
	Workers int
}

type IngestionSummary struct {
	Players             int
	Fixtures            int
	Performances        int
	// RawPayloads counts raw snapshots that were new or changed.
	RawPayloads         int
	SkippedPlayers      int
	SkippedFixtures     int
	SkippedPerformances int
	// UnscheduledFixtures counts stored fixtures with no gameweek or kickoff yet.
	UnscheduledFixtures int
}

// IngestionService persists a finished collection. Players, fixtures,
// performances and raw payloads are written in that order, each stage in its
// own transaction; a failed stage leaves earlier stages committed. Every write
// is an upsert, so rerunning the collection repairs a partial ingest.
type IngestionService struct {
	playerRepo      player.Repository
	fixtureRepo     fixture.Repository
	performanceRepo performance.Repository
	rawDataRepo     rawdata.Repository
	validate        *validator.Validate
	workers         int
	logger          *logging.Logger
}

func NewIngestionService(
	playerRepo player.Repository,
	fixtureRepo fixture.Repository,
	performanceRepo performance.Repository,
	rawDataRepo rawdata.Repository,
	cfg IngestionConfig,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &IngestionService{
		playerRepo:      playerRepo,
		fixtureRepo:     fixtureRepo,
		performanceRepo: performanceRepo,
		rawDataRepo:     rawDataRepo,
		validate:        validator.New(),
		workers:         workers,
		logger:          logger,
	}
}

func (s *IngestionService) Ingest(ctx context.Context, data CollectedData) (IngestionSummary, error) {
	ctx, span := startSpan(ctx, "usecase.IngestionService.Ingest", false)
	defer span.End()

	var summary IngestionSummary
	lookup := newCollectionLookup(data.GeneralInfo)

	players := make([]player.Player, 0, len(data.GeneralInfo.Players))
	knownPlayers := make(map[int64]struct{}, len(data.GeneralInfo.Players))
	for _, item := range data.GeneralInfo.Players {
		if err := s.validate.Struct(item); err != nil {
			summary.SkippedPlayers++
			s.logger.WarnContext(ctx, "skip invalid player", "player_id", item.ExternalID, "error", err)
			continue
		}
		mapped := mapPlayer(item, lookup)
		if err := mapped.Validate(); err != nil {
			summary.SkippedPlayers++
			s.logger.WarnContext(ctx, "skip invalid player", "player_id", item.ExternalID, "error", err)
			continue
		}
		players = append(players, mapped)
		knownPlayers[mapped.ID] = struct{}{}
	}

	fixtures := make([]fixture.Fixture, 0, len(data.Fixtures.Items))
	knownFixtures := make(map[int64]struct{}, len(data.Fixtures.Items))
	for _, item := range data.Fixtures.Items {
		if err := s.validate.Struct(item); err != nil {
			summary.SkippedFixtures++
			s.logger.WarnContext(ctx, "skip invalid fixture", "fixture_id", item.ExternalID, "error", err)
			continue
		}
		mapped := mapFixture(item, lookup)
		if mapped.HomeTeam == "" || mapped.AwayTeam == "" {
			summary.SkippedFixtures++
			s.logger.WarnContext(ctx, "skip fixture with unknown team",
				"fixture_id", item.ExternalID,
				"home_team_id", item.HomeTeamExternalID,
				"away_team_id", item.AwayTeamExternalID,
			)
			continue
		}
		if !mapped.IsScheduled() {
			summary.UnscheduledFixtures++
		}
		fixtures = append(fixtures, mapped)
		knownFixtures[mapped.ID] = struct{}{}
	}

	performances := make([]performance.Performance, 0)
	for _, result := range data.PlayerDetails {
		if result.Failed() {
			continue
		}
		for _, stat := range result.Detail.History {
			if err := s.validate.Struct(stat); err != nil {
				summary.SkippedPerformances++
				s.logger.WarnContext(ctx, "skip invalid performance", "player_id", result.PlayerID, "fixture_id", stat.FixtureExternalID, "error", err)
				continue
			}
			mapped := mapPerformance(result.PlayerID, stat)
			if err := mapped.Validate(); err != nil {
				summary.SkippedPerformances++
				s.logger.WarnContext(ctx, "skip invalid performance", "player_id", mapped.PlayerID, "fixture_id", mapped.FixtureID, "error", err)
				continue
			}
			_, playerOK := knownPlayers[mapped.PlayerID]
			_, fixtureOK := knownFixtures[mapped.FixtureID]
			if !playerOK || !fixtureOK {
				summary.SkippedPerformances++
				s.logger.WarnContext(ctx, "skip performance with unknown reference",
					"player_id", mapped.PlayerID,
					"fixture_id", mapped.FixtureID,
					"player_known", playerOK,
					"fixture_known", fixtureOK,
				)
				continue
			}
			performances = append(performances, mapped)
		}
	}
	performances = performance.Dedupe(performances)

	if err := s.playerRepo.UpsertMany(ctx, players); err != nil {
		return summary, fmt.Errorf("upsert players: %w", err)
	}
	summary.Players = len(players)

	if err := s.fixtureRepo.UpsertMany(ctx, fixtures); err != nil {
		return summary, fmt.Errorf("upsert fixtures: %w", err)
	}
	summary.Fixtures = len(fixtures)

	if err := s.upsertPerformances(ctx, performances); err != nil {
		return summary, err
	}
	summary.Performances = len(performances)

	if s.rawDataRepo != nil {
		payloads := buildRawPayloads(data)
		changed, err := s.rawDataRepo.UpsertMany(ctx, payloads)
		if err != nil {
			return summary, fmt.Errorf("upsert raw payloads: %w", err)
		}
		summary.RawPayloads = changed
	}

	span.SetAttributes(
		attribute.Int("ingest.players", summary.Players),
		attribute.Int("ingest.fixtures", summary.Fixtures),
		attribute.Int("ingest.performances", summary.Performances),
	)
	s.logger.InfoContext(ctx, "ingested collection",
		"players", summary.Players,
		"fixtures", summary.Fixtures,
		"performances", summary.Performances,
		"raw_payloads", summary.RawPayloads,
		"skipped_players", summary.SkippedPlayers,
		"skipped_fixtures", summary.SkippedFixtures,
		"skipped_performances", summary.SkippedPerformances,
		"unscheduled_fixtures", summary.UnscheduledFixtures,
	)
	return summary, nil
}

// upsertPerformances writes one batch per player on a bounded pool.
func (s *IngestionService) upsertPerformances(ctx context.Context, items []performance.Performance) error {
	if len(items) == 0 {
		return nil
	}

	order := make([]int64, 0)
	byPlayer := make(map[int64][]performance.Performance)
	for _, item := range items {
		if _, ok := byPlayer[item.PlayerID]; !ok {
			order = append(order, item.PlayerID)
		}
		byPlayer[item.PlayerID] = append(byPlayer[item.PlayerID], item)
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		combined error
		workers  sync.WaitGroup
	)
	for _, playerID := range order {
		batch := byPlayer[playerID]
		playerID := playerID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if err := s.performanceRepo.UpsertMany(ctx, batch); err != nil {
				mu.Lock()
				combined = crerr.CombineErrors(combined, fmt.Errorf("player %d: %w", playerID, err))
				mu.Unlock()
			}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return fmt.Errorf("submit performance batch to worker pool: %w", err)
		}
	}
	workers.Wait()

	if combined != nil {
		return fmt.Errorf("upsert performances: %w", combined)
	}
	return nil
}

func buildRawPayloads(data CollectedData) []rawdata.Payload {
	out := make([]rawdata.Payload, 0, len(data.PlayerDetails)+2)
	appendPayload := func(entityType, entityKey string, raw []byte) {
		if IsEmptyPayload(raw) || !sonic.Valid(raw) {
			return
		}
		sum := sha256.Sum256(raw)
		out = append(out, rawdata.Payload{
			Source:      rawDataSourceFPL,
			EntityType:  entityType,
			EntityKey:   entityKey,
			PayloadJSON: string(raw),
			PayloadHash: hex.EncodeToString(sum[:]),
			FetchedAt:   data.FetchedAt,
		})
	}

	appendPayload(rawdata.EntityGeneralInfo, "current", data.GeneralInfo.Raw)
	appendPayload(rawdata.EntityFixtures, "all", data.Fixtures.Raw)
	for _, result := range data.PlayerDetails {
		if result.Failed() {
			continue
		}
		appendPayload(rawdata.EntityPlayerDetail, strconv.FormatInt(result.PlayerID, 10), result.Detail.Raw)
	}
	return out
}

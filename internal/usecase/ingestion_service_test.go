package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fpl-stats/internal/domain/performance"
	"github.com/riskibarqy/fpl-stats/internal/domain/player"
	"github.com/riskibarqy/fpl-stats/internal/domain/rawdata"
	"github.com/riskibarqy/fpl-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
)

type ingestionFixture struct {
	players      *memory.PlayerRepository
	fixtures     *memory.FixtureRepository
	performances *memory.PerformanceRepository
	raw          *memory.RawDataRepository
	svc          *IngestionService
}

func newIngestionFixture(logger *logging.Logger) ingestionFixture {
	players := memory.NewPlayerRepository(nil)
	fixtures := memory.NewFixtureRepository(nil)
	performances := memory.NewPerformanceRepository(players, fixtures)
	raw := memory.NewRawDataRepository()
	return ingestionFixture{
		players:      players,
		fixtures:     fixtures,
		performances: performances,
		raw:          raw,
		svc:          NewIngestionService(players, fixtures, performances, raw, IngestionConfig{Workers: 2}, logger),
	}
}

func sampleCollectedData() CollectedData {
	kickoff := time.Date(2024, 8, 17, 14, 0, 0, 0, time.UTC)
	two, zero := 2, 0
	return CollectedData{
		GeneralInfo: ExternalGeneralInfo{
			Players: []ExternalPlayer{
				{
					ExternalID: 328, FirstName: "Mohamed", SecondName: "Salah", WebName: "M.Salah",
					TeamExternalID: 12, PositionID: 3, TotalPoints: 344, NowCost: 132, CostChangeStart: 7,
					GoalsScored: 29, Assists: 18, Minutes: 3374, Bonus: 37,
					SelectedByPercent: "61.4", TransfersIn: 9000000, TransfersOut: 4000000, Form: "7.3",
				},
				{
					ExternalID: 1, WebName: "Raya", TeamExternalID: 1, PositionID: 1, NowCost: 55,
					SelectedByPercent: "n/a",
				},
			},
			Teams: []ExternalTeam{
				{ExternalID: 1, Name: "Arsenal", ShortName: "ARS"},
				{ExternalID: 12, Name: "Liverpool", ShortName: "LIV"},
			},
			Positions: []ExternalPosition{{ExternalID: 3, ShortName: "mid"}},
			Raw:       []byte(`{"elements":[{"id":328}]}`),
		},
		Fixtures: ExternalFixtureList{
			Items: []ExternalFixture{
				{ExternalID: 10, Gameweek: 1, KickoffAt: &kickoff, HomeTeamExternalID: 12, AwayTeamExternalID: 1, HomeScore: &two, AwayScore: &zero, Finished: true},
			},
			Raw: []byte(`[{"id":10}]`),
		},
		PlayerDetails: []PlayerDetailResult{
			{
				PlayerID: 328,
				Detail: ExternalPlayerDetail{
					PlayerExternalID: 328,
					History: []ExternalPlayerFixtureStat{
						{PlayerExternalID: 328, FixtureExternalID: 10, Gameweek: 1, WasHome: true, TotalPoints: 5, Minutes: 90},
						{PlayerExternalID: 328, FixtureExternalID: 10, Gameweek: 1, WasHome: true, TotalPoints: 8, Minutes: 90, GoalsScored: 1},
						{PlayerExternalID: 328, FixtureExternalID: 404, Gameweek: 2, TotalPoints: 2, Minutes: 60},
					},
					Raw: []byte(`{"history":[{"fixture":10}]}`),
				},
			},
			{PlayerID: 1, Err: errors.New("status 500")},
		},
		FetchedAt: time.Date(2024, 8, 18, 0, 0, 0, 0, time.UTC),
	}
}

func TestIngestionService_MapsAndPersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger, logs := newObservedLogger()
	f := newIngestionFixture(logger)

	summary, err := f.svc.Ingest(ctx, sampleCollectedData())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Players)
	require.Equal(t, 1, summary.Fixtures)
	require.Equal(t, 1, summary.Performances)
	require.Equal(t, 1, summary.SkippedPerformances)
	require.Equal(t, 3, summary.RawPayloads)

	salah, ok, err := f.players.GetByID(ctx, 328)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Mohamed Salah", salah.Name)
	require.Equal(t, "Liverpool", salah.Team)
	require.Equal(t, player.PositionMidfielder, salah.Position)
	require.Equal(t, 13.2, salah.CurrentPrice)
	require.Equal(t, 12.5, salah.StartSeasonPrice)
	require.Equal(t, 61.4, salah.SelectedByPercent)
	require.Equal(t, 7.3, salah.Form)
	require.Equal(t, int64(9000000), salah.TransfersIn)

	raya, ok, err := f.players.GetByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Raya", raya.Name)
	require.Equal(t, player.PositionGoalkeeper, raya.Position)
	require.Zero(t, raya.SelectedByPercent)

	match, ok, err := f.fixtures.GetByID(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Liverpool", match.HomeTeam)
	require.Equal(t, "Arsenal", match.AwayTeam)
	require.Empty(t, match.Venue)

	history, err := f.performances.ListByPlayer(ctx, 328)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 8, history[0].Points)
	require.Equal(t, 1, history[0].GoalsScored)

	raw, ok := f.raw.Get(rawDataSourceFPL, rawdata.EntityPlayerDetail, "328")
	require.True(t, ok)
	sum := sha256.Sum256([]byte(`{"history":[{"fixture":10}]}`))
	require.Equal(t, hex.EncodeToString(sum[:]), raw.PayloadHash)
	_, ok = f.raw.Get(rawDataSourceFPL, rawdata.EntityPlayerDetail, "1")
	require.False(t, ok)

	require.Equal(t, 1, logs.FilterMessage("skip performance with unknown reference").Len())
}

func TestIngestionService_ReingestIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger, _ := newObservedLogger()
	f := newIngestionFixture(logger)

	_, err := f.svc.Ingest(ctx, sampleCollectedData())
	require.NoError(t, err)

	summary, err := f.svc.Ingest(ctx, sampleCollectedData())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Players)
	require.Equal(t, 1, summary.Performances)
	require.Zero(t, summary.RawPayloads)

	history, err := f.performances.ListByPlayer(ctx, 328)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 3, f.raw.Len())
}

func TestIngestionService_SkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	data := sampleCollectedData()
	data.GeneralInfo.Players = append(data.GeneralInfo.Players,
		ExternalPlayer{ExternalID: 0, WebName: "ghost", TeamExternalID: 1, PositionID: 2},
		ExternalPlayer{ExternalID: 50, WebName: "odd", TeamExternalID: 1, PositionID: 9},
	)
	data.Fixtures.Items = append(data.Fixtures.Items,
		ExternalFixture{ExternalID: 11, HomeTeamExternalID: 1, AwayTeamExternalID: 1},
		ExternalFixture{ExternalID: 12, HomeTeamExternalID: 1, AwayTeamExternalID: 77},
	)

	f := newIngestionFixture(logging.NewNop())
	summary, err := f.svc.Ingest(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Players)
	require.Equal(t, 2, summary.SkippedPlayers)
	require.Equal(t, 1, summary.Fixtures)
	require.Equal(t, 2, summary.SkippedFixtures)
}

type failingPerformanceRepo struct {
	performance.Repository
	err error
}

func (r failingPerformanceRepo) UpsertMany(context.Context, []performance.Performance) error {
	return r.err
}

func TestIngestionService_PropagatesWriteFailure(t *testing.T) {
	t.Parallel()

	players := memory.NewPlayerRepository(nil)
	fixtures := memory.NewFixtureRepository(nil)
	svc := NewIngestionService(players, fixtures, failingPerformanceRepo{err: errors.New("connection reset")}, nil, IngestionConfig{Workers: 1}, logging.NewNop())

	ctx := context.Background()
	summary, err := svc.Ingest(ctx, sampleCollectedData())
	require.ErrorContains(t, err, "connection reset")
	require.Equal(t, 2, summary.Players)
	require.Zero(t, summary.Performances)

	// earlier stages stay committed
	storedPlayers, err := players.List(ctx)
	require.NoError(t, err)
	require.Len(t, storedPlayers, 2)
	storedFixtures, err := fixtures.List(ctx)
	require.NoError(t, err)
	require.Len(t, storedFixtures, 1)
}

func TestIngestionService_CountsUnscheduledFixtures(t *testing.T) {
	t.Parallel()

	data := sampleCollectedData()
	data.Fixtures.Items = append(data.Fixtures.Items,
		ExternalFixture{ExternalID: 20, HomeTeamExternalID: 1, AwayTeamExternalID: 12},
		ExternalFixture{ExternalID: 21, Gameweek: 30, HomeTeamExternalID: 12, AwayTeamExternalID: 1},
	)

	f := newIngestionFixture(logging.NewNop())
	summary, err := f.svc.Ingest(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Fixtures)
	require.Equal(t, 2, summary.UnscheduledFixtures)

	stored, ok, err := f.fixtures.GetByID(context.Background(), 20)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, stored.IsScheduled())
}

func TestIngestionService_NoRawRepository(t *testing.T) {
	t.Parallel()

	players := memory.NewPlayerRepository(nil)
	fixtures := memory.NewFixtureRepository(nil)
	performances := memory.NewPerformanceRepository(players, fixtures)
	svc := NewIngestionService(players, fixtures, performances, nil, IngestionConfig{}, nil)

	summary, err := svc.Ingest(context.Background(), sampleCollectedData())
	require.NoError(t, err)
	require.Zero(t, summary.RawPayloads)
}

func TestMapPlayer_PriceConversion(t *testing.T) {
	t.Parallel()

	lookup := newCollectionLookup(ExternalGeneralInfo{})
	got := mapPlayer(ExternalPlayer{ExternalID: 9, WebName: "Haaland", PositionID: 4, NowCost: 150, CostChangeStart: -5}, lookup)
	require.Equal(t, 15.0, got.CurrentPrice)
	require.Equal(t, 15.5, got.StartSeasonPrice)
	require.Equal(t, player.PositionForward, got.Position)
	require.Equal(t, "Haaland", got.Name)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fpl-stats/internal/domain/fixture"
	"github.com/riskibarqy/fpl-stats/internal/domain/performance"
	"github.com/riskibarqy/fpl-stats/internal/domain/player"
	"github.com/riskibarqy/fpl-stats/internal/domain/rawdata"
)

func intPtr(v int) *int { return &v }

func seededRepositories(t *testing.T) (*PlayerRepository, *FixtureRepository, *PerformanceRepository) {
	t.Helper()

	kickoff := time.Date(2024, 8, 17, 14, 0, 0, 0, time.UTC)
	players := NewPlayerRepository([]player.Player{
		{ID: 7, Name: "Bukayo Saka", Team: "Arsenal", Position: player.PositionMidfielder},
		{ID: 3, Name: "David Raya", Team: "Arsenal", Position: player.PositionGoalkeeper},
	})
	fixtures := NewFixtureRepository([]fixture.Fixture{
		{ID: 11, Gameweek: 2, HomeTeam: "Aston Villa", AwayTeam: "Arsenal"},
		{ID: 2, Gameweek: 1, KickoffAt: &kickoff, HomeTeam: "Arsenal", AwayTeam: "Wolves", HomeScore: intPtr(2), AwayScore: intPtr(0)},
		{ID: 99, HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
	})
	return players, fixtures, NewPerformanceRepository(players, fixtures)
}

func TestPlayerRepository_UpsertReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPlayerRepository(nil)
	require.NoError(t, repo.UpsertMany(ctx, []player.Player{{ID: 7, Name: "Saka", TotalPoints: 10}}))
	require.NoError(t, repo.UpsertMany(ctx, []player.Player{{ID: 7, Name: "Saka", TotalPoints: 12}, {ID: 1, Name: "Raya"}}))

	got, ok, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 12, got.TotalPoints)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, int64(1), all[0].ID)

	_, ok, err = repo.GetByID(ctx, 404)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFixtureRepository_ListOrdersUnscheduledLast(t *testing.T) {
	t.Parallel()

	_, fixtures, _ := seededRepositories(t)
	all, err := fixtures.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{2, 11, 99}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestPerformanceRepository_UniquePerPlayerFixture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, _, repo := seededRepositories(t)

	require.NoError(t, repo.UpsertMany(ctx, []performance.Performance{{PlayerID: 7, FixtureID: 2, Gameweek: 1, Points: 5}}))
	require.NoError(t, repo.UpsertMany(ctx, []performance.Performance{{PlayerID: 7, FixtureID: 2, Gameweek: 1, Points: 9}}))

	rows, err := repo.ListByPlayer(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 9, rows[0].Points)
	require.Equal(t, "Arsenal", rows[0].HomeTeam)
	require.Equal(t, "Wolves", rows[0].AwayTeam)
	require.Equal(t, 2, *rows[0].HomeScore)
}

func TestPerformanceRepository_RejectsUnknownReferences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, _, repo := seededRepositories(t)

	require.Error(t, repo.UpsertMany(ctx, []performance.Performance{{PlayerID: 404, FixtureID: 2}}))
	require.Error(t, repo.UpsertMany(ctx, []performance.Performance{{PlayerID: 7, FixtureID: 404}}))

	rows, err := repo.ListByPlayer(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestPerformanceRepository_ListByFixtureJoinsPlayers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, _, repo := seededRepositories(t)
	require.NoError(t, repo.UpsertMany(ctx, []performance.Performance{
		{PlayerID: 7, FixtureID: 2, Gameweek: 1, Points: 9},
		{PlayerID: 3, FixtureID: 2, Gameweek: 1, Points: 6},
		{PlayerID: 7, FixtureID: 11, Gameweek: 2, Points: 2},
	}))

	rows, err := repo.ListByFixture(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "David Raya", rows[0].PlayerName)
	require.Equal(t, "GKP", rows[0].Position)
	require.Equal(t, "Bukayo Saka", rows[1].PlayerName)

	history, err := repo.ListByPlayer(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, int64(2), history[0].FixtureID)
	require.Equal(t, int64(11), history[1].FixtureID)
}

func TestRawDataRepository_UpsertByIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRawDataRepository()
	changed, err := repo.UpsertMany(ctx, []rawdata.Payload{
		{Source: "fpl", EntityType: rawdata.EntityPlayerDetail, EntityKey: "7", PayloadHash: "a"},
		{Source: "fpl", EntityType: rawdata.EntityPlayerDetail, EntityKey: "7", PayloadHash: "b"},
		{Source: "fpl", EntityType: rawdata.EntityFixtures, EntityKey: "all", PayloadHash: "c"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, changed)

	require.Equal(t, 2, repo.Len())
	got, ok := repo.Get("fpl", rawdata.EntityPlayerDetail, "7")
	require.True(t, ok)
	require.Equal(t, "b", got.PayloadHash)

	changed, err = repo.UpsertMany(ctx, []rawdata.Payload{
		{Source: "fpl", EntityType: rawdata.EntityPlayerDetail, EntityKey: "7", PayloadHash: "b"},
		{Source: "fpl", EntityType: rawdata.EntityFixtures, EntityKey: "all", PayloadHash: "d"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, changed)
}

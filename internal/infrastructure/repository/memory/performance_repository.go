package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/riskibarqy/fpl-stats/internal/domain/performance"
)

// PerformanceRepository enforces the same references and (player, fixture)
// uniqueness as the postgres schema.
type PerformanceRepository struct {
	mu       sync.RWMutex
	rows     map[performance.Key]performance.Performance
	players  *PlayerRepository
	fixtures *FixtureRepository
}

func NewPerformanceRepository(players *PlayerRepository, fixtures *FixtureRepository) *PerformanceRepository {
	return &PerformanceRepository{
		rows:     make(map[performance.Key]performance.Performance),
		players:  players,
		fixtures: fixtures,
	}
}

func (r *PerformanceRepository) UpsertMany(_ context.Context, items []performance.Performance) error {
	for _, item := range items {
		if !r.players.exists(item.PlayerID) {
			return fmt.Errorf("performance references unknown player %d", item.PlayerID)
		}
		if _, ok := r.fixtures.get(item.FixtureID); !ok {
			return fmt.Errorf("performance references unknown fixture %d", item.FixtureID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.rows[item.Key()] = item
	}
	return nil
}

func (r *PerformanceRepository) ListByPlayer(_ context.Context, playerID int64) ([]performance.PlayerHistoryRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]performance.PlayerHistoryRow, 0)
	for key, row := range r.rows {
		if key.PlayerID != playerID {
			continue
		}
		f, _ := r.fixtures.get(key.FixtureID)
		out = append(out, performance.PlayerHistoryRow{
			Performance: row,
			KickoffAt:   f.KickoffAt,
			HomeTeam:    f.HomeTeam,
			AwayTeam:    f.AwayTeam,
			HomeScore:   f.HomeScore,
			AwayScore:   f.AwayScore,
		})
	}
	slices.SortFunc(out, func(a, b performance.PlayerHistoryRow) int {
		if c := cmp.Compare(a.Gameweek, b.Gameweek); c != 0 {
			return c
		}
		return cmp.Compare(a.FixtureID, b.FixtureID)
	})
	return out, nil
}

func (r *PerformanceRepository) ListByFixture(ctx context.Context, fixtureID int64) ([]performance.FixtureLineRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]performance.FixtureLineRow, 0)
	for key, row := range r.rows {
		if key.FixtureID != fixtureID {
			continue
		}
		p, _, _ := r.players.GetByID(ctx, key.PlayerID)
		out = append(out, performance.FixtureLineRow{
			Performance: row,
			PlayerName:  p.Name,
			Team:        p.Team,
			Position:    string(p.Position),
		})
	}
	slices.SortFunc(out, func(a, b performance.FixtureLineRow) int { return cmp.Compare(a.PlayerID, b.PlayerID) })
	return out, nil
}

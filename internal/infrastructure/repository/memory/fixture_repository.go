package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/fpl-stats/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[int64]fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	index := make(map[int64]fixture.Fixture, len(fixtures))
	for _, f := range fixtures {
		index[f.ID] = f
	}
	return &FixtureRepository{fixtures: index}
}

func (r *FixtureRepository) UpsertMany(_ context.Context, items []fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.fixtures[item.ID] = item
	}
	return nil
}

func (r *FixtureRepository) GetByID(_ context.Context, id int64) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.fixtures[id]
	return f, ok, nil
}

// List orders by gameweek, unscheduled fixtures last, then by id.
func (r *FixtureRepository) List(_ context.Context) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.fixtures))
	for _, f := range r.fixtures {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b fixture.Fixture) int {
		if c := cmp.Compare(gameweekOrder(a.Gameweek), gameweekOrder(b.Gameweek)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *FixtureRepository) get(id int64) (fixture.Fixture, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.fixtures[id]
	return f, ok
}

func gameweekOrder(gw int) int {
	if gw <= 0 {
		return int(^uint(0) >> 1)
	}
	return gw
}

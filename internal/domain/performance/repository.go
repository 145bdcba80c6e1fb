package performance

import "context"

// Repository persists performances and serves the player/fixture joins.
type Repository interface {
	UpsertMany(ctx context.Context, items []Performance) error
	ListByPlayer(ctx context.Context, playerID int64) ([]PlayerHistoryRow, error)
	ListByFixture(ctx context.Context, fixtureID int64) ([]FixtureLineRow, error)
}

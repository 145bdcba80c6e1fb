package fixture

import "context"

// Repository exposes fixture persistence.
type Repository interface {
	UpsertMany(ctx context.Context, fixtures []Fixture) error
	GetByID(ctx context.Context, id int64) (Fixture, bool, error)
	List(ctx context.Context) ([]Fixture, error)
}

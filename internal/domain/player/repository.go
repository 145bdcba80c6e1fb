package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	UpsertMany(ctx context.Context, players []Player) error
	GetByID(ctx context.Context, id int64) (Player, bool, error)
	List(ctx context.Context) ([]Player, error)
}

package rawdata

import "context"

// Repository keeps the latest snapshot per (source, entity type, entity key).
// UpsertMany reports how many snapshots were inserted or replaced; a payload
// whose hash matches the stored one is not counted.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) (int, error)
}

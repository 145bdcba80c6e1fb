package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-stats/internal/domain/rawdata"
	qb "github.com/riskibarqy/fpl-stats/internal/platform/querybuilder"
)

const rawDataUpsertSuffix = `ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at,
    ingested_at = NOW()
WHERE raw_data_payloads.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash`

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

// UpsertMany stores one snapshot per identity. Rows whose hash is unchanged
// are skipped by the conflict clause and do not count toward the result.
func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var changed int64
	for _, item := range items {
		insertModel := rawDataPayloadInsertModel{
			Source:      item.Source,
			EntityType:  item.EntityType,
			EntityKey:   item.EntityKey,
			Payload:     item.PayloadJSON,
			PayloadHash: item.PayloadHash,
			FetchedAt:   item.FetchedAt.UTC(),
		}

		query, args, err := qb.InsertModel("raw_data_payloads", insertModel, rawDataUpsertSuffix)
		if err != nil {
			return 0, fmt.Errorf("build upsert raw payload query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("upsert raw payload entity=%s key=%s: %w", item.EntityType, item.EntityKey, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			changed += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}
	return int(changed), nil
}

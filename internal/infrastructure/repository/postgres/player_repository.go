package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-stats/internal/domain/player"
	qb "github.com/riskibarqy/fpl-stats/internal/platform/querybuilder"
)

var playerSelectColumns = []string{
	"id",
	"name",
	"team",
	"position",
	"total_points",
	"current_price",
	"start_season_price",
	"goals_scored",
	"assists",
	"clean_sheets",
	"yellow_cards",
	"red_cards",
	"minutes_played",
	"selected_by_percent",
	"bonus_points",
	"transfers_in",
	"transfers_out",
	"form",
}

const playerUpsertSuffix = `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    team = EXCLUDED.team,
    position = EXCLUDED.position,
    total_points = EXCLUDED.total_points,
    current_price = EXCLUDED.current_price,
    start_season_price = EXCLUDED.start_season_price,
    goals_scored = EXCLUDED.goals_scored,
    assists = EXCLUDED.assists,
    clean_sheets = EXCLUDED.clean_sheets,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    minutes_played = EXCLUDED.minutes_played,
    selected_by_percent = EXCLUDED.selected_by_percent,
    bonus_points = EXCLUDED.bonus_points,
    transfers_in = EXCLUDED.transfers_in,
    transfers_out = EXCLUDED.transfers_out,
    form = EXCLUDED.form,
    updated_at = NOW()`

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, items []player.Player) error {
	if len(items) == 0 {
		return nil
	}

	items = dedupeLast(items, func(p player.Player) int64 { return p.ID })
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, batch := range chunk(items, maxRowsPerStatement) {
		query, args, err := buildPlayerUpsert(batch)
		if err != nil {
			return fmt.Errorf("build upsert players query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert players: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert players tx: %w", err)
	}
	return nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by id query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func buildPlayerUpsert(items []player.Player) (string, []any, error) {
	models := make([]playerTableModel, 0, len(items))
	for _, item := range items {
		models = append(models, playerToModel(item))
	}
	return qb.InsertModels("players", models, playerUpsertSuffix)
}

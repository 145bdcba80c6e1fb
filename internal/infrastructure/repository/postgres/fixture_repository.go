package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-stats/internal/domain/fixture"
	qb "github.com/riskibarqy/fpl-stats/internal/platform/querybuilder"
)

var fixtureSelectColumns = []string{
	"id",
	"code",
	"gameweek",
	"kickoff_at",
	"home_team",
	"away_team",
	"home_team_score",
	"away_team_score",
	"venue",
	"started",
	"finished",
}

const fixtureUpsertSuffix = `ON CONFLICT (id) DO UPDATE SET
    code = EXCLUDED.code,
    gameweek = EXCLUDED.gameweek,
    kickoff_at = EXCLUDED.kickoff_at,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    home_team_score = EXCLUDED.home_team_score,
    away_team_score = EXCLUDED.away_team_score,
    venue = EXCLUDED.venue,
    started = EXCLUDED.started,
    finished = EXCLUDED.finished,
    updated_at = NOW()`

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) UpsertMany(ctx context.Context, items []fixture.Fixture) error {
	if len(items) == 0 {
		return nil
	}

	items = dedupeLast(items, func(f fixture.Fixture) int64 { return f.ID })
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert fixtures: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, batch := range chunk(items, maxRowsPerStatement) {
		query, args, err := buildFixtureUpsert(batch)
		if err != nil {
			return fmt.Errorf("build upsert fixtures query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert fixtures: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert fixtures tx: %w", err)
	}
	return nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, id int64) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).From("fixtures").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build select fixture by id query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("select fixture by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *FixtureRepository) List(ctx context.Context) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).From("fixtures").
		OrderBy("CASE WHEN gameweek > 0 THEN gameweek END NULLS LAST", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func buildFixtureUpsert(items []fixture.Fixture) (string, []any, error) {
	models := make([]fixtureTableModel, 0, len(items))
	for _, item := range items {
		models = append(models, fixtureToModel(item))
	}
	return qb.InsertModels("fixtures", models, fixtureUpsertSuffix)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-stats/internal/domain/performance"
	qb "github.com/riskibarqy/fpl-stats/internal/platform/querybuilder"
)

var performanceSelectColumns = []string{
	"pp.player_id",
	"pp.fixture_id",
	"pp.gameweek",
	"pp.was_home",
	"pp.points",
	"pp.minutes_played",
	"pp.goals_scored",
	"pp.assists",
	"pp.clean_sheets",
	"pp.yellow_cards",
	"pp.red_cards",
	"pp.bonus_points",
}

const performanceUpsertSuffix = `ON CONFLICT (player_id, fixture_id) DO UPDATE SET
    gameweek = EXCLUDED.gameweek,
    was_home = EXCLUDED.was_home,
    points = EXCLUDED.points,
    minutes_played = EXCLUDED.minutes_played,
    goals_scored = EXCLUDED.goals_scored,
    assists = EXCLUDED.assists,
    clean_sheets = EXCLUDED.clean_sheets,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    bonus_points = EXCLUDED.bonus_points,
    updated_at = NOW()`

type PerformanceRepository struct {
	db *sqlx.DB
}

func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

func (r *PerformanceRepository) UpsertMany(ctx context.Context, items []performance.Performance) error {
	if len(items) == 0 {
		return nil
	}

	items = performance.Dedupe(items)
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert performances: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, batch := range chunk(items, maxRowsPerStatement) {
		query, args, err := buildPerformanceUpsert(batch)
		if err != nil {
			return fmt.Errorf("build upsert performances query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert performances: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert performances tx: %w", err)
	}
	return nil
}

func (r *PerformanceRepository) ListByPlayer(ctx context.Context, playerID int64) ([]performance.PlayerHistoryRow, error) {
	query, args, err := buildListByPlayerQuery(playerID)
	if err != nil {
		return nil, fmt.Errorf("build select performances by player query: %w", err)
	}

	var rows []playerHistoryRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select performances by player: %w", err)
	}

	out := make([]performance.PlayerHistoryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, performance.PlayerHistoryRow{
			Performance: row.performanceTableModel.toDomain(),
			KickoffAt:   timePtr(row.KickoffAt),
			HomeTeam:    row.HomeTeam,
			AwayTeam:    row.AwayTeam,
			HomeScore:   intPtr(row.HomeScore),
			AwayScore:   intPtr(row.AwayScore),
		})
	}
	return out, nil
}

func (r *PerformanceRepository) ListByFixture(ctx context.Context, fixtureID int64) ([]performance.FixtureLineRow, error) {
	query, args, err := buildListByFixtureQuery(fixtureID)
	if err != nil {
		return nil, fmt.Errorf("build select performances by fixture query: %w", err)
	}

	var rows []fixtureLineRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select performances by fixture: %w", err)
	}

	out := make([]performance.FixtureLineRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, performance.FixtureLineRow{
			Performance: row.performanceTableModel.toDomain(),
			PlayerName:  row.PlayerName,
			Team:        row.Team,
			Position:    row.Position,
		})
	}
	return out, nil
}

func buildPerformanceUpsert(items []performance.Performance) (string, []any, error) {
	models := make([]performanceTableModel, 0, len(items))
	for _, item := range items {
		models = append(models, performanceToModel(item))
	}
	return qb.InsertModels("player_performances", models, performanceUpsertSuffix)
}

func buildListByPlayerQuery(playerID int64) (string, []any, error) {
	columns := append(append([]string(nil), performanceSelectColumns...),
		"f.kickoff_at",
		"f.home_team",
		"f.away_team",
		"f.home_team_score",
		"f.away_team_score",
	)
	return qb.Select(columns...).
		From("player_performances pp").
		Join("fixtures f", "f.id = pp.fixture_id").
		Where(qb.Eq("pp.player_id", playerID)).
		OrderBy("pp.gameweek", "pp.fixture_id").
		ToSQL()
}

func buildListByFixtureQuery(fixtureID int64) (string, []any, error) {
	columns := append(append([]string(nil), performanceSelectColumns...),
		"p.name AS player_name",
		"p.team",
		"p.position",
	)
	return qb.Select(columns...).
		From("player_performances pp").
		Join("players p", "p.id = pp.player_id").
		Where(qb.Eq("pp.fixture_id", fixtureID)).
		OrderBy("pp.player_id").
		ToSQL()
}

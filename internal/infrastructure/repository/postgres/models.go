package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/fpl-stats/internal/domain/fixture"
	"github.com/riskibarqy/fpl-stats/internal/domain/performance"
	"github.com/riskibarqy/fpl-stats/internal/domain/player"
)

type playerTableModel struct {
	ID                int64   `db:"id"`
	Name              string  `db:"name"`
	Team              string  `db:"team"`
	Position          string  `db:"position"`
	TotalPoints       int     `db:"total_points"`
	CurrentPrice      float64 `db:"current_price"`
	StartSeasonPrice  float64 `db:"start_season_price"`
	GoalsScored       int     `db:"goals_scored"`
	Assists           int     `db:"assists"`
	CleanSheets       int     `db:"clean_sheets"`
	YellowCards       int     `db:"yellow_cards"`
	RedCards          int     `db:"red_cards"`
	MinutesPlayed     int     `db:"minutes_played"`
	SelectedByPercent float64 `db:"selected_by_percent"`
	BonusPoints       int     `db:"bonus_points"`
	TransfersIn       int64   `db:"transfers_in"`
	TransfersOut      int64   `db:"transfers_out"`
	Form              float64 `db:"form"`
}

func playerToModel(p player.Player) playerTableModel {
	return playerTableModel{
		ID:                p.ID,
		Name:              p.Name,
		Team:              p.Team,
		Position:          string(p.Position),
		TotalPoints:       p.TotalPoints,
		CurrentPrice:      p.CurrentPrice,
		StartSeasonPrice:  p.StartSeasonPrice,
		GoalsScored:       p.GoalsScored,
		Assists:           p.Assists,
		CleanSheets:       p.CleanSheets,
		YellowCards:       p.YellowCards,
		RedCards:          p.RedCards,
		MinutesPlayed:     p.MinutesPlayed,
		SelectedByPercent: p.SelectedByPercent,
		BonusPoints:       p.BonusPoints,
		TransfersIn:       p.TransfersIn,
		TransfersOut:      p.TransfersOut,
		Form:              p.Form,
	}
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:                m.ID,
		Name:              m.Name,
		Team:              m.Team,
		Position:          player.Position(m.Position),
		TotalPoints:       m.TotalPoints,
		CurrentPrice:      m.CurrentPrice,
		StartSeasonPrice:  m.StartSeasonPrice,
		GoalsScored:       m.GoalsScored,
		Assists:           m.Assists,
		CleanSheets:       m.CleanSheets,
		YellowCards:       m.YellowCards,
		RedCards:          m.RedCards,
		MinutesPlayed:     m.MinutesPlayed,
		SelectedByPercent: m.SelectedByPercent,
		BonusPoints:       m.BonusPoints,
		TransfersIn:       m.TransfersIn,
		TransfersOut:      m.TransfersOut,
		Form:              m.Form,
	}
}

type fixtureTableModel struct {
	ID        int64         `db:"id"`
	Code      int64         `db:"code"`
	Gameweek  int           `db:"gameweek"`
	KickoffAt sql.NullTime  `db:"kickoff_at"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	HomeScore sql.NullInt64 `db:"home_team_score"`
	AwayScore sql.NullInt64 `db:"away_team_score"`
	Venue     string        `db:"venue"`
	Started   bool          `db:"started"`
	Finished  bool          `db:"finished"`
}

func fixtureToModel(f fixture.Fixture) fixtureTableModel {
	return fixtureTableModel{
		ID:        f.ID,
		Code:      f.Code,
		Gameweek:  f.Gameweek,
		KickoffAt: nullTime(f.KickoffAt),
		HomeTeam:  f.HomeTeam,
		AwayTeam:  f.AwayTeam,
		HomeScore: nullInt(f.HomeScore),
		AwayScore: nullInt(f.AwayScore),
		Venue:     f.Venue,
		Started:   f.Started,
		Finished:  f.Finished,
	}
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	return fixture.Fixture{
		ID:        m.ID,
		Code:      m.Code,
		Gameweek:  m.Gameweek,
		KickoffAt: timePtr(m.KickoffAt),
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		HomeScore: intPtr(m.HomeScore),
		AwayScore: intPtr(m.AwayScore),
		Venue:     m.Venue,
		Started:   m.Started,
		Finished:  m.Finished,
	}
}

type performanceTableModel struct {
	PlayerID      int64 `db:"player_id"`
	FixtureID     int64 `db:"fixture_id"`
	Gameweek      int   `db:"gameweek"`
	WasHome       bool  `db:"was_home"`
	Points        int   `db:"points"`
	MinutesPlayed int   `db:"minutes_played"`
	GoalsScored   int   `db:"goals_scored"`
	Assists       int   `db:"assists"`
	CleanSheets   int   `db:"clean_sheets"`
	YellowCards   int   `db:"yellow_cards"`
	RedCards      int   `db:"red_cards"`
	BonusPoints   int   `db:"bonus_points"`
}

func performanceToModel(p performance.Performance) performanceTableModel {
	return performanceTableModel{
		PlayerID:      p.PlayerID,
		FixtureID:     p.FixtureID,
		Gameweek:      p.Gameweek,
		WasHome:       p.WasHome,
		Points:        p.Points,
		MinutesPlayed: p.MinutesPlayed,
		GoalsScored:   p.GoalsScored,
		Assists:       p.Assists,
		CleanSheets:   p.CleanSheets,
		YellowCards:   p.YellowCards,
		RedCards:      p.RedCards,
		BonusPoints:   p.BonusPoints,
	}
}

func (m performanceTableModel) toDomain() performance.Performance {
	return performance.Performance{
		PlayerID:      m.PlayerID,
		FixtureID:     m.FixtureID,
		Gameweek:      m.Gameweek,
		WasHome:       m.WasHome,
		Points:        m.Points,
		MinutesPlayed: m.MinutesPlayed,
		GoalsScored:   m.GoalsScored,
		Assists:       m.Assists,
		CleanSheets:   m.CleanSheets,
		YellowCards:   m.YellowCards,
		RedCards:      m.RedCards,
		BonusPoints:   m.BonusPoints,
	}
}

type playerHistoryRowModel struct {
	performanceTableModel
	KickoffAt sql.NullTime  `db:"kickoff_at"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	HomeScore sql.NullInt64 `db:"home_team_score"`
	AwayScore sql.NullInt64 `db:"away_team_score"`
}

type fixtureLineRowModel struct {
	performanceTableModel
	PlayerName string `db:"player_name"`
	Team       string `db:"team"`
	Position   string `db:"position"`
}

type rawDataPayloadInsertModel struct {
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}

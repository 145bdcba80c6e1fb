package performance

import (
	"fmt"
	"time"
)

// Performance records one player's stats for one fixture. PlayerID and
// FixtureID reference player.Player and fixture.Fixture.
type Performance struct {
	PlayerID      int64
	FixtureID     int64
	Gameweek      int
	WasHome       bool
	Points        int
	MinutesPlayed int
	GoalsScored   int
	Assists       int
	CleanSheets   int
	YellowCards   int
	RedCards      int
	BonusPoints   int
}

// Key identifies a performance row; at most one row exists per key.
type Key struct {
	PlayerID  int64
	FixtureID int64
}

func (p Performance) Key() Key {
	return Key{PlayerID: p.PlayerID, FixtureID: p.FixtureID}
}

func (p Performance) Validate() error {
	if p.PlayerID <= 0 {
		return fmt.Errorf("performance player id must be greater than zero")
	}
	if p.FixtureID <= 0 {
		return fmt.Errorf("performance fixture id must be greater than zero")
	}
	if p.MinutesPlayed < 0 || p.GoalsScored < 0 || p.Assists < 0 || p.CleanSheets < 0 {
		return fmt.Errorf("performance player=%d fixture=%d has negative stats", p.PlayerID, p.FixtureID)
	}
	if p.YellowCards < 0 || p.RedCards < 0 || p.BonusPoints < 0 {
		return fmt.Errorf("performance player=%d fixture=%d has negative discipline or bonus", p.PlayerID, p.FixtureID)
	}
	return nil
}

// Dedupe keeps one performance per (player, fixture), the last occurrence
// winning, and preserves first-seen order.
func Dedupe(items []Performance) []Performance {
	if len(items) == 0 {
		return []Performance{}
	}

	index := make(map[Key]int, len(items))
	out := make([]Performance, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if idx, ok := index[key]; ok {
			out[idx] = item
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}

// PlayerHistoryRow joins a performance with its fixture.
type PlayerHistoryRow struct {
	Performance
	KickoffAt *time.Time
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
}

// FixtureLineRow joins a performance with its player.
type FixtureLineRow struct {
	Performance
	PlayerName string
	Team       string
	Position   string
}

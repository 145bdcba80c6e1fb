package player

import "fmt"

// Position is the FPL element type short name.
type Position string

const (
	PositionGoalkeeper Position = "GKP"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Player is one league player with season aggregates and market data.
// ID is the FPL element id.
type Player struct {
	ID                int64
	Name              string
	Team              string
	Position          Position
	TotalPoints       int
	CurrentPrice      float64
	StartSeasonPrice  float64
	GoalsScored       int
	Assists           int
	CleanSheets       int
	YellowCards       int
	RedCards          int
	MinutesPlayed     int
	SelectedByPercent float64
	BonusPoints       int
	TransfersIn       int64
	TransfersOut      int64
	Form              float64
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %q", p.Position)
	}
	if p.GoalsScored < 0 || p.Assists < 0 || p.CleanSheets < 0 || p.MinutesPlayed < 0 {
		return fmt.Errorf("player %d has negative season aggregates", p.ID)
	}
	if p.YellowCards < 0 || p.RedCards < 0 || p.BonusPoints < 0 {
		return fmt.Errorf("player %d has negative discipline or bonus counts", p.ID)
	}
	if p.CurrentPrice < 0 || p.StartSeasonPrice < 0 {
		return fmt.Errorf("player %d price cannot be negative", p.ID)
	}
	if p.SelectedByPercent < 0 || p.SelectedByPercent > 100 {
		return fmt.Errorf("player %d selected_by_percent out of range: %v", p.ID, p.SelectedByPercent)
	}
	return nil
}

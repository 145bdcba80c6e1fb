package fixture

import "time"

// Fixture is one scheduled match. ID is the FPL fixture id.
type Fixture struct {
	ID        int64
	Code      int64
	Gameweek  int
	KickoffAt *time.Time
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
	Venue     string
	Started   bool
	Finished  bool
}

// IsScheduled reports whether the fixture has a gameweek and kickoff time.
func (f Fixture) IsScheduled() bool {
	return f.Gameweek > 0 && f.KickoffAt != nil
}

package usecase

import (
	"strconv"
	"strings"

	"github.com/riskibarqy/fpl-stats/internal/domain/fixture"
	"github.com/riskibarqy/fpl-stats/internal/domain/performance"
	"github.com/riskibarqy/fpl-stats/internal/domain/player"
)

// FPL element_type ids; used when bootstrap omits element_types.
var defaultPositionsByID = map[int64]player.Position{
	1: player.PositionGoalkeeper,
	2: player.PositionDefender,
	3: player.PositionMidfielder,
	4: player.PositionForward,
}

type collectionLookup struct {
	teamNames map[int64]string
	positions map[int64]player.Position
}

func newCollectionLookup(info ExternalGeneralInfo) collectionLookup {
	lookup := collectionLookup{
		teamNames: make(map[int64]string, len(info.Teams)),
		positions: make(map[int64]player.Position, len(defaultPositionsByID)),
	}
	for id, pos := range defaultPositionsByID {
		lookup.positions[id] = pos
	}
	for _, team := range info.Teams {
		lookup.teamNames[team.ExternalID] = strings.TrimSpace(team.Name)
	}
	for _, pos := range info.Positions {
		lookup.positions[pos.ExternalID] = player.Position(strings.ToUpper(strings.TrimSpace(pos.ShortName)))
	}
	return lookup
}

// mapPlayer converts tenths-of-a-million prices to millions and parses the
// string-encoded ownership and form fields.
func mapPlayer(item ExternalPlayer, lookup collectionLookup) player.Player {
	return player.Player{
		ID:                item.ExternalID,
		Name:              playerDisplayName(item),
		Team:              lookup.teamNames[item.TeamExternalID],
		Position:          lookup.positions[item.PositionID],
		TotalPoints:       item.TotalPoints,
		CurrentPrice:      tenthsToMillions(item.NowCost),
		StartSeasonPrice:  tenthsToMillions(item.NowCost - item.CostChangeStart),
		GoalsScored:       item.GoalsScored,
		Assists:           item.Assists,
		CleanSheets:       item.CleanSheets,
		YellowCards:       item.YellowCards,
		RedCards:          item.RedCards,
		MinutesPlayed:     item.Minutes,
		SelectedByPercent: parseDecimal(item.SelectedByPercent),
		BonusPoints:       item.Bonus,
		TransfersIn:       item.TransfersIn,
		TransfersOut:      item.TransfersOut,
		Form:              parseDecimal(item.Form),
	}
}

// mapFixture leaves Venue empty; the public API does not publish it.
func mapFixture(item ExternalFixture, lookup collectionLookup) fixture.Fixture {
	return fixture.Fixture{
		ID:        item.ExternalID,
		Code:      item.Code,
		Gameweek:  item.Gameweek,
		KickoffAt: item.KickoffAt,
		HomeTeam:  lookup.teamNames[item.HomeTeamExternalID],
		AwayTeam:  lookup.teamNames[item.AwayTeamExternalID],
		HomeScore: item.HomeScore,
		AwayScore: item.AwayScore,
		Started:   item.Started,
		Finished:  item.Finished,
	}
}

func mapPerformance(playerID int64, item ExternalPlayerFixtureStat) performance.Performance {
	if item.PlayerExternalID > 0 {
		playerID = item.PlayerExternalID
	}
	return performance.Performance{
		PlayerID:      playerID,
		FixtureID:     item.FixtureExternalID,
		Gameweek:      item.Gameweek,
		WasHome:       item.WasHome,
		Points:        item.TotalPoints,
		MinutesPlayed: item.Minutes,
		GoalsScored:   item.GoalsScored,
		Assists:       item.Assists,
		CleanSheets:   item.CleanSheets,
		YellowCards:   item.YellowCards,
		RedCards:      item.RedCards,
		BonusPoints:   item.Bonus,
	}
}

func playerDisplayName(item ExternalPlayer) string {
	full := strings.TrimSpace(strings.TrimSpace(item.FirstName) + " " + strings.TrimSpace(item.SecondName))
	if full != "" {
		return full
	}
	return strings.TrimSpace(item.WebName)
}

func tenthsToMillions(v int) float64 {
	return float64(v) / 10
}

func parseDecimal(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

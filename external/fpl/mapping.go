package fpl

import (
	"strings"
	"time"

	"github.com/riskibarqy/fpl-stats/internal/usecase"
)

func mapGeneralInfo(envelope bootstrapEnvelope, raw []byte) usecase.ExternalGeneralInfo {
	out := usecase.ExternalGeneralInfo{
		Players:   make([]usecase.ExternalPlayer, 0, len(envelope.Elements)),
		Teams:     make([]usecase.ExternalTeam, 0, len(envelope.Teams)),
		Positions: make([]usecase.ExternalPosition, 0, len(envelope.ElementTypes)),
		Raw:       raw,
	}
	for _, item := range envelope.Elements {
		out.Players = append(out.Players, usecase.ExternalPlayer{
			ExternalID:        item.ID,
			FirstName:         strings.TrimSpace(item.FirstName),
			SecondName:        strings.TrimSpace(item.SecondName),
			WebName:           strings.TrimSpace(item.WebName),
			TeamExternalID:    item.Team,
			PositionID:        item.ElementType,
			TotalPoints:       item.TotalPoints,
			NowCost:           item.NowCost,
			CostChangeStart:   item.CostChangeStart,
			GoalsScored:       item.GoalsScored,
			Assists:           item.Assists,
			CleanSheets:       item.CleanSheets,
			YellowCards:       item.YellowCards,
			RedCards:          item.RedCards,
			Minutes:           item.Minutes,
			Bonus:             item.Bonus,
			SelectedByPercent: item.SelectedByPercent,
			TransfersIn:       item.TransfersIn,
			TransfersOut:      item.TransfersOut,
			Form:              item.Form,
		})
	}
	for _, item := range envelope.Teams {
		out.Teams = append(out.Teams, usecase.ExternalTeam{
			ExternalID: item.ID,
			Name:       strings.TrimSpace(item.Name),
			ShortName:  strings.TrimSpace(item.ShortName),
		})
	}
	for _, item := range envelope.ElementTypes {
		out.Positions = append(out.Positions, usecase.ExternalPosition{
			ExternalID: item.ID,
			ShortName:  strings.TrimSpace(item.SingularNameShort),
		})
	}
	return out
}

func mapFixtureList(items []fixtureItem, raw []byte) usecase.ExternalFixtureList {
	out := usecase.ExternalFixtureList{
		Items: make([]usecase.ExternalFixture, 0, len(items)),
		Raw:   raw,
	}
	for _, item := range items {
		row := usecase.ExternalFixture{
			ExternalID:         item.ID,
			Code:               item.Code,
			KickoffAt:          parseKickoff(item.KickoffTime),
			HomeTeamExternalID: item.TeamH,
			AwayTeamExternalID: item.TeamA,
			HomeScore:          item.TeamHScore,
			AwayScore:          item.TeamAScore,
			Finished:           item.Finished,
		}
		if item.Event != nil {
			row.Gameweek = *item.Event
		}
		if item.Started != nil {
			row.Started = *item.Started
		}
		out.Items = append(out.Items, row)
	}
	return out
}

func mapPlayerDetail(playerID int64, envelope elementSummaryEnvelope, raw []byte) usecase.ExternalPlayerDetail {
	out := usecase.ExternalPlayerDetail{
		PlayerExternalID: playerID,
		History:          make([]usecase.ExternalPlayerFixtureStat, 0, len(envelope.History)),
		Raw:              raw,
	}
	for _, item := range envelope.History {
		element := item.Element
		if element <= 0 {
			element = playerID
		}
		out.History = append(out.History, usecase.ExternalPlayerFixtureStat{
			PlayerExternalID:   element,
			FixtureExternalID:  item.Fixture,
			OpponentExternalID: item.OpponentTeam,
			Gameweek:           item.Round,
			WasHome:            item.WasHome,
			KickoffAt:          parseKickoff(item.KickoffTime),
			TotalPoints:        item.TotalPoints,
			Minutes:            item.Minutes,
			GoalsScored:        item.GoalsScored,
			Assists:            item.Assists,
			CleanSheets:        item.CleanSheets,
			YellowCards:        item.YellowCards,
			RedCards:           item.RedCards,
			Bonus:              item.Bonus,
		})
	}
	return out
}

func parseKickoff(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}

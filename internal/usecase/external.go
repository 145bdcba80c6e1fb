package usecase

import (
	"bytes"
	"context"
	"time"
)

// StatsProvider is the read side of the FPL public API.
type StatsProvider interface {
	FetchGeneralInfo(ctx context.Context) (ExternalGeneralInfo, error)
	FetchFixtures(ctx context.Context) (ExternalFixtureList, error)
	FetchPlayerDetail(ctx context.Context, playerID int64) (ExternalPlayerDetail, error)
}

type ExternalTeam struct {
	ExternalID int64  `validate:"gt=0"`
	Name       string `validate:"required"`
	ShortName  string
}

type ExternalPosition struct {
	ExternalID int64  `validate:"gt=0"`
	ShortName  string `validate:"required"`
}

type ExternalPlayer struct {
	ExternalID        int64  `validate:"gt=0"`
	FirstName         string
	SecondName        string
	WebName           string `validate:"required"`
	TeamExternalID    int64  `validate:"gt=0"`
	PositionID        int64  `validate:"gt=0"`
	TotalPoints       int
	NowCost           int `validate:"gte=0"`
	CostChangeStart   int
	GoalsScored       int `validate:"gte=0"`
	Assists           int `validate:"gte=0"`
	CleanSheets       int `validate:"gte=0"`
	YellowCards       int `validate:"gte=0"`
	RedCards          int `validate:"gte=0"`
	Minutes           int `validate:"gte=0"`
	Bonus             int `validate:"gte=0"`
	SelectedByPercent string
	TransfersIn       int64 `validate:"gte=0"`
	TransfersOut      int64 `validate:"gte=0"`
	Form              string
}

// ExternalGeneralInfo is the bootstrap-static document. Raw keeps the body
// exactly as received.
type ExternalGeneralInfo struct {
	Players   []ExternalPlayer
	Teams     []ExternalTeam
	Positions []ExternalPosition
	Raw       []byte
}

func (g ExternalGeneralInfo) IsEmpty() bool {
	return IsEmptyPayload(g.Raw)
}

// PlayerIDs returns player ids in document order.
func (g ExternalGeneralInfo) PlayerIDs() []int64 {
	out := make([]int64, 0, len(g.Players))
	for _, item := range g.Players {
		out = append(out, item.ExternalID)
	}
	return out
}

type ExternalFixture struct {
	ExternalID         int64 `validate:"gt=0"`
	Code               int64
	Gameweek           int `validate:"gte=0"`
	KickoffAt          *time.Time
	HomeTeamExternalID int64 `validate:"gt=0"`
	AwayTeamExternalID int64 `validate:"gt=0,nefield=HomeTeamExternalID"`
	HomeScore          *int
	AwayScore          *int
	Started            bool
	Finished           bool
}

type ExternalFixtureList struct {
	Items []ExternalFixture
	Raw   []byte
}

func (l ExternalFixtureList) IsEmpty() bool {
	return IsEmptyPayload(l.Raw)
}

type ExternalPlayerFixtureStat struct {
	PlayerExternalID   int64 `validate:"gt=0"`
	FixtureExternalID  int64 `validate:"gt=0"`
	OpponentExternalID int64
	Gameweek           int
	WasHome            bool
	KickoffAt          *time.Time
	TotalPoints        int
	Minutes            int `validate:"gte=0"`
	GoalsScored        int `validate:"gte=0"`
	Assists            int `validate:"gte=0"`
	CleanSheets        int `validate:"gte=0"`
	YellowCards        int `validate:"gte=0"`
	RedCards           int `validate:"gte=0"`
	Bonus              int `validate:"gte=0"`
}

type ExternalPlayerDetail struct {
	PlayerExternalID int64
	History          []ExternalPlayerFixtureStat
	Raw              []byte
}

func (d ExternalPlayerDetail) IsEmpty() bool {
	return IsEmptyPayload(d.Raw)
}

// IsEmptyPayload reports whether raw is blank, null, {} or [].
func IsEmptyPayload(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	if len(trimmed) < 2 {
		return false
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	if (first == '{' && last == '}') || (first == '[' && last == ']') {
		return len(bytes.TrimSpace(trimmed[1:len(trimmed)-1])) == 0
	}
	return false
}

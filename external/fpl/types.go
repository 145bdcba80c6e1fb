package fpl

type bootstrapEnvelope struct {
	Elements     []elementItem     `json:"elements"`
	Teams        []teamItem        `json:"teams"`
	ElementTypes []elementTypeItem `json:"element_types"`
}

type elementItem struct {
	ID                int64  `json:"id"`
	FirstName         string `json:"first_name"`
	SecondName        string `json:"second_name"`
	WebName           string `json:"web_name"`
	Team              int64  `json:"team"`
	ElementType       int64  `json:"element_type"`
	TotalPoints       int    `json:"total_points"`
	NowCost           int    `json:"now_cost"`
	CostChangeStart   int    `json:"cost_change_start"`
	GoalsScored       int    `json:"goals_scored"`
	Assists           int    `json:"assists"`
	CleanSheets       int    `json:"clean_sheets"`
	YellowCards       int    `json:"yellow_cards"`
	RedCards          int    `json:"red_cards"`
	Minutes           int    `json:"minutes"`
	Bonus             int    `json:"bonus"`
	SelectedByPercent string `json:"selected_by_percent"`
	TransfersIn       int64  `json:"transfers_in"`
	TransfersOut      int64  `json:"transfers_out"`
	Form              string `json:"form"`
}

type teamItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type elementTypeItem struct {
	ID                int64  `json:"id"`
	SingularNameShort string `json:"singular_name_short"`
}

type fixtureItem struct {
	ID          int64   `json:"id"`
	Code        int64   `json:"code"`
	Event       *int    `json:"event"`
	KickoffTime *string `json:"kickoff_time"`
	TeamH       int64   `json:"team_h"`
	TeamA       int64   `json:"team_a"`
	TeamHScore  *int    `json:"team_h_score"`
	TeamAScore  *int    `json:"team_a_score"`
	Started     *bool   `json:"started"`
	Finished    bool    `json:"finished"`
}

type elementSummaryEnvelope struct {
	History []historyItem `json:"history"`
}

type historyItem struct {
	Element      int64   `json:"element"`
	Fixture      int64   `json:"fixture"`
	OpponentTeam int64   `json:"opponent_team"`
	Round        int     `json:"round"`
	WasHome      bool    `json:"was_home"`
	KickoffTime  *string `json:"kickoff_time"`
	TotalPoints  int     `json:"total_points"`
	Minutes      int     `json:"minutes"`
	GoalsScored  int     `json:"goals_scored"`
	Assists      int     `json:"assists"`
	CleanSheets  int     `json:"clean_sheets"`
	YellowCards  int     `json:"yellow_cards"`
	RedCards     int     `json:"red_cards"`
	Bonus        int     `json:"bonus"`
}

package draftapi

import (
	"encoding/json"
	"strings"

	"github.com/bnema/family-draft-cli/internal/domain"
)

// stateEnvelope is the body of route=state: ok plus the snapshot fields
// inlined at the top level.
type stateEnvelope struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error,omitempty"`
	snapshotSchema
}

// actionEnvelope is the body of every POST route.
type actionEnvelope struct {
	OK    *bool           `json:"ok"`
	Error string          `json:"error,omitempty"`
	State *snapshotSchema `json:"state,omitempty"`
}

type snapshotSchema struct {
	Config       configSchema                `json:"config"`
	Current      *currentSchema              `json:"current"`
	Players      []playerSchema              `json:"players"`
	Projections  []projectionSchema          `json:"projections"`
	TakenPairIDs []json.RawMessage           `json:"taken_pair_ids"`
	Leaderboard  []leaderboardSchema         `json:"leaderboard"`
	Teams        map[string][]teamItemSchema `json:"teams"`
}

type configSchema struct {
	DraftStatus text `json:"draft_status"`
}

type currentSchema struct {
	PickNumber     domain.Number `json:"pick_number"`
	Direction      domain.Number `json:"direction"`
	OnTheClockName text          `json:"on_the_clock_name"`
}

type playerSchema struct {
	PlayerID    json.RawMessage `json:"player_id"`
	DisplayName text            `json:"display_name"`
}

type projectionSchema struct {
	PairID          json.RawMessage `json:"pair_id"`
	Sport           text            `json:"sport"`
	Country         text            `json:"country"`
	PowerRank       domain.Number   `json:"power_rank"`
	ProjectedPoints domain.Number   `json:"projected_points"`
	NumMedals       domain.Number   `json:"num_medals"`
	LastYearScore   domain.Number   `json:"last_year_score"`
}

type leaderboardSchema struct {
	PlayerID             json.RawMessage `json:"player_id"`
	DisplayName          text            `json:"display_name"`
	TotalProjectedPoints domain.Number   `json:"total_projected_points"`
	PicksMade            domain.Number   `json:"picks_made"`
}

type teamItemSchema struct {
	Sport           text          `json:"sport"`
	Country         text          `json:"country"`
	ProjectedPoints domain.Number `json:"projected_points"`
}

type pickRequest struct {
	PlayerID string `json:"player_id"`
	PIN      string `json:"pin"`
	Sport    string `json:"sport"`
	Country  string `json:"country"`
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type setStatusRequest struct {
	PIN         string `json:"pin"`
	DraftStatus string `json:"draft_status"`
}

func requestBody(action domain.Action) any {
	switch action.Kind {
	case domain.ActionPick:
		return pickRequest{PlayerID: action.PlayerID, PIN: action.PIN, Sport: action.Sport, Country: action.Country}
	case domain.ActionSetStatus:
		return setStatusRequest{PIN: action.PIN, DraftStatus: string(action.DraftStatus)}
	default:
		return pinRequest{PIN: action.PIN}
	}
}

func fromSchema(s snapshotSchema) *domain.Snapshot {
	snapshot := &domain.Snapshot{
		Config:       domain.Config{DraftStatus: domain.DraftStatus(strings.ToUpper(strings.TrimSpace(string(s.Config.DraftStatus))))},
		Players:      make([]domain.Player, 0, len(s.Players)),
		Projections:  make([]domain.Projection, 0, len(s.Projections)),
		TakenPairIDs: make([]string, 0, len(s.TakenPairIDs)),
		Leaderboard:  make([]domain.LeaderboardEntry, 0, len(s.Leaderboard)),
		Teams:        make(map[string][]domain.TeamItem, len(s.Teams)),
	}

	if s.Current != nil {
		snapshot.Current = domain.Current{
			PickNumber: s.Current.PickNumber,
			Direction:  domain.DirectionReverse,
			OnTheClock: string(s.Current.OnTheClockName),
		}
		if v, ok := s.Current.Direction.Finite(); ok && v == 1 {
			snapshot.Current.Direction = domain.DirectionForward
		}
	}

	for _, p := range s.Players {
		snapshot.Players = append(snapshot.Players, domain.Player{ID: identifier(p.PlayerID), DisplayName: string(p.DisplayName)})
	}

	for _, p := range s.Projections {
		snapshot.Projections = append(snapshot.Projections, domain.Projection{
			PairID:          identifier(p.PairID),
			Sport:           string(p.Sport),
			Country:         string(p.Country),
			PowerRank:       p.PowerRank,
			ProjectedPoints: p.ProjectedPoints,
			NumMedals:       p.NumMedals,
			LastYearScore:   p.LastYearScore,
		})
	}

	for _, id := range s.TakenPairIDs {
		snapshot.TakenPairIDs = append(snapshot.TakenPairIDs, identifier(id))
	}

	for _, entry := range s.Leaderboard {
		picks, _ := entry.PicksMade.Finite()
		snapshot.Leaderboard = append(snapshot.Leaderboard, domain.LeaderboardEntry{
			PlayerID:             identifier(entry.PlayerID),
			DisplayName:          string(entry.DisplayName),
			TotalProjectedPoints: entry.TotalProjectedPoints,
			PicksMade:            int(picks),
		})
	}

	for playerID, items := range s.Teams {
		team := make([]domain.TeamItem, 0, len(items))
		for _, item := range items {
			team = append(team, domain.TeamItem{Sport: string(item.Sport), Country: string(item.Country), ProjectedPoints: item.ProjectedPoints})
		}
		snapshot.Teams[playerID] = team
	}

	return snapshot
}

// text is a sheet cell shown as text. Numbers and booleans keep their JSON
// spelling, so a country typed as 250 still reads "250".
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	*t = text(identifier(data))
	return nil
}

// identifier accepts ids sent as strings or as sheet numbers.
func identifier(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return strings.TrimSpace(string(raw))
}

package domain

import (
	"errors"
	"fmt"
	"math"
)

type DraftStatus string

const (
	DraftStatusOpen   DraftStatus = "OPEN"
	DraftStatusClosed DraftStatus = "CLOSED"
)

func (s DraftStatus) Valid() bool {
	switch s {
	case DraftStatusOpen, DraftStatusClosed:
		return true
	default:
		return false
	}
}

type Config struct {
	DraftStatus DraftStatus
}

// Direction of the snake order. Only used for display.
type Direction int

const (
	DirectionForward Direction = 1
	DirectionReverse Direction = -1
)

func (d Direction) Glyph() string {
	if d == DirectionForward {
		return "→"
	}
	return "←"
}

type Current struct {
	PickNumber Number
	Direction  Direction
	OnTheClock string
}

type Player struct {
	ID          string
	DisplayName string
}

type Projection struct {
	PairID          string
	Sport           string
	Country         string
	PowerRank       Number
	ProjectedPoints Number
	NumMedals       Number
	LastYearScore   Number
}

type LeaderboardEntry struct {
	PlayerID             string
	DisplayName          string
	TotalProjectedPoints Number
	PicksMade            int
}

type TeamItem struct {
	Sport           string
	Country         string
	ProjectedPoints Number
}

// Snapshot is the authoritative draft state as of one fetch or mutation
// response. A published Snapshot is never modified; a newer one replaces it.
type Snapshot struct {
	Config       Config
	Current      Current
	Players      []Player
	Projections  []Projection
	TakenPairIDs []string
	Leaderboard  []LeaderboardEntry
	Teams        map[string][]TeamItem
}

// TakenSet builds a fresh membership set; the snapshot itself is not touched.
func (s *Snapshot) TakenSet() map[string]struct{} {
	taken := make(map[string]struct{}, len(s.TakenPairIDs))
	for _, id := range s.TakenPairIDs {
		taken[id] = struct{}{}
	}
	return taken
}

func (s *Snapshot) Projection(pairID string) (Projection, bool) {
	for _, p := range s.Projections {
		if p.PairID == pairID {
			return p, true
		}
	}
	return Projection{}, false
}

func (s *Snapshot) Player(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// TotalFor returns the leaderboard total for a player, zero when the player
// has no leaderboard entry.
func (s *Snapshot) TotalFor(playerID string) Number {
	for _, entry := range s.Leaderboard {
		if entry.PlayerID == playerID {
			return entry.TotalProjectedPoints
		}
	}
	return NumberOf(0)
}

const pointsTolerance = 1e-6

// Check reports every violated consistency rule between projections, taken
// ids, teams and the leaderboard. The server owns the state, so callers treat
// the result as a diagnostic.
func (s *Snapshot) Check() error {
	var errs []error

	byPair := make(map[string]Projection, len(s.Projections))
	byItem := make(map[[2]string]string, len(s.Projections))
	for _, p := range s.Projections {
		if _, dup := byPair[p.PairID]; dup {
			errs = append(errs, fmt.Errorf("duplicate pair id %q", p.PairID))
			continue
		}
		byPair[p.PairID] = p
		byItem[[2]string{p.Sport, p.Country}] = p.PairID
	}

	taken := s.TakenSet()
	for _, id := range s.TakenPairIDs {
		if _, ok := byPair[id]; !ok {
			errs = append(errs, fmt.Errorf("taken pair id %q not in projections", id))
		}
	}

	entries := make(map[string]LeaderboardEntry, len(s.Leaderboard))
	for _, entry := range s.Leaderboard {
		entries[entry.PlayerID] = entry
	}

	claimed := make(map[string]struct{}, len(taken))
	for _, player := range s.Players {
		entry, ok := entries[player.ID]
		if !ok {
			errs = append(errs, fmt.Errorf("player %q missing from leaderboard", player.ID))
			continue
		}

		items := s.Teams[player.ID]
		if len(items) != entry.PicksMade {
			errs = append(errs, fmt.Errorf("player %q: %d team items, %d picks made", player.ID, len(items), entry.PicksMade))
		}

		var sum float64
		for _, item := range items {
			if v, ok := item.ProjectedPoints.Finite(); ok {
				sum += v
			}
			if id, ok := byItem[[2]string{item.Sport, item.Country}]; ok {
				claimed[id] = struct{}{}
			} else {
				errs = append(errs, fmt.Errorf("player %q: team item %s/%s not in projections", player.ID, item.Sport, item.Country))
			}
		}

		total, _ := entry.TotalProjectedPoints.Finite()
		if !closeEnough(sum, total) {
			errs = append(errs, fmt.Errorf("player %q: team points %.3f, leaderboard total %.3f", player.ID, sum, total))
		}
	}

	if len(s.Leaderboard) != len(s.Players) {
		errs = append(errs, fmt.Errorf("leaderboard has %d entries for %d players", len(s.Leaderboard), len(s.Players)))
	}

	for id := range taken {
		if _, ok := claimed[id]; !ok {
			errs = append(errs, fmt.Errorf("taken pair id %q not on any team", id))
		}
	}
	for id := range claimed {
		if _, ok := taken[id]; !ok {
			errs = append(errs, fmt.Errorf("team pair id %q not marked taken", id))
		}
	}

	return errors.Join(errs...)
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) <= pointsTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

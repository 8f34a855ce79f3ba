package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshalAcceptsSheetValues(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantValue  float64
		wantFinite bool
		wantText   string
	}{
		{name: "number", raw: `12.5`, wantValue: 12.5, wantFinite: true, wantText: "12.5"},
		{name: "numeric string", raw: `" 7 "`, wantValue: 7, wantFinite: true, wantText: "7.0"},
		{name: "null is missing", raw: `null`, wantText: "—"},
		{name: "blank string is missing", raw: `""`, wantText: "—"},
		{name: "text is kept raw", raw: `"n/a"`, wantText: "n/a"},
		{name: "bool true", raw: `true`, wantValue: 1, wantFinite: true, wantText: "1.0"},
		{name: "out of range literal is kept raw", raw: `1e400`, wantText: "1e400"},
		{name: "object is kept raw", raw: `{"a":1}`, wantText: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &n))

			v, ok := n.Finite()
			assert.Equal(t, tt.wantFinite, ok)
			assert.Equal(t, tt.wantValue, v)
			assert.Equal(t, tt.wantText, n.Format(1))
		})
	}
}

func TestNumberOrLowestTreatsNonFiniteAsNegativeInfinity(t *testing.T) {
	assert.True(t, math.IsInf(Number{}.OrLowest(), -1))
	assert.True(t, math.IsInf(NumberOf(math.NaN()).OrLowest(), -1))
	assert.True(t, math.IsInf(NumberOf(math.Inf(1)).OrLowest(), -1))
	assert.Equal(t, 3.0, NumberOf(3).OrLowest())
}

func TestNumberMarshalRoundsTripsDisplayForms(t *testing.T) {
	data, err := json.Marshal([]Number{NumberOf(2), {}, {Raw: "tbd"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[2, null, "tbd"]`, string(data))
}

func TestSortToggle(t *testing.T) {
	tests := []struct {
		name string
		from Sort
		key  SortKey
		want Sort
	}{
		{name: "same key flips", from: DefaultSort(), key: SortByProjectedPoints, want: Sort{Key: SortByProjectedPoints, Direction: SortAscending}},
		{name: "power rank starts ascending", from: DefaultSort(), key: SortByPowerRank, want: Sort{Key: SortByPowerRank, Direction: SortAscending}},
		{name: "sport starts ascending", from: DefaultSort(), key: SortBySport, want: Sort{Key: SortBySport, Direction: SortAscending}},
		{name: "country starts ascending", from: DefaultSort(), key: SortByCountry, want: Sort{Key: SortByCountry, Direction: SortAscending}},
		{name: "medals start descending", from: Sort{Key: SortBySport, Direction: SortAscending}, key: SortByNumMedals, want: Sort{Key: SortByNumMedals, Direction: SortDescending}},
		{name: "last year starts descending", from: Sort{Key: SortBySport, Direction: SortDescending}, key: SortByLastYearScore, want: Sort{Key: SortByLastYearScore, Direction: SortDescending}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Toggle(tt.key))
		})
	}
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey(" Power_Rank ")
	require.NoError(t, err)
	assert.Equal(t, SortByPowerRank, key)

	_, err = ParseSortKey("medals")
	require.Error(t, err)
}

func TestRejectionErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid PIN", (&RejectionError{Route: "pick", Message: "Invalid PIN"}).Error())
	assert.Equal(t, "Pick rejected.", (&RejectionError{Route: "pick"}).Error())
	assert.Equal(t, "Admin action failed.", (&RejectionError{Route: "undo"}).Error())
	assert.Equal(t, "Error loading state", (&RejectionError{Route: "state"}).Error())
}

func TestSnapshotCheckAcceptsConsistentState(t *testing.T) {
	assert.NoError(t, consistentSnapshot().Check())
}

func TestSnapshotCheckReportsViolations(t *testing.T) {
	snapshot := consistentSnapshot()
	snapshot.TakenPairIDs = append(snapshot.TakenPairIDs, "ghost")
	snapshot.Leaderboard[0].PicksMade = 3

	err := snapshot.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `taken pair id "ghost" not in projections`)
	assert.Contains(t, err.Error(), `player "p1": 1 team items, 3 picks made`)
}

func TestSnapshotTotalForMissingPlayerIsZero(t *testing.T) {
	snapshot := consistentSnapshot()

	assert.Equal(t, "12.0", snapshot.TotalFor("p1").Format(1))
	assert.Equal(t, "0.0", snapshot.TotalFor("nobody").Format(1))
}

func consistentSnapshot() *Snapshot {
	return &Snapshot{
		Config:  Config{DraftStatus: DraftStatusOpen},
		Current: Current{PickNumber: NumberOf(2), Direction: DirectionForward, OnTheClock: "Bea"},
		Players: []Player{{ID: "p1", DisplayName: "Ana"}, {ID: "p2", DisplayName: "Bea"}},
		Projections: []Projection{
			{PairID: "P1", Sport: "Skiing", Country: "NOR", ProjectedPoints: NumberOf(12)},
			{PairID: "P2", Sport: "Curling", Country: "SWE", ProjectedPoints: NumberOf(4)},
		},
		TakenPairIDs: []string{"P1"},
		Leaderboard: []LeaderboardEntry{
			{PlayerID: "p1", DisplayName: "Ana", TotalProjectedPoints: NumberOf(12), PicksMade: 1},
			{PlayerID: "p2", DisplayName: "Bea", TotalProjectedPoints: NumberOf(0), PicksMade: 0},
		},
		Teams: map[string][]TeamItem{
			"p1": {{Sport: "Skiing", Country: "NOR", ProjectedPoints: NumberOf(12)}},
		},
	}
}

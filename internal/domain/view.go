package domain

import (
	"fmt"
	"strings"
)

type SortKey string

const (
	SortBySport           SortKey = "sport"
	SortByCountry         SortKey = "country"
	SortByPowerRank       SortKey = "power_rank"
	SortByProjectedPoints SortKey = "projected_points"
	SortByNumMedals       SortKey = "num_medals"
	SortByLastYearScore   SortKey = "last_year_score"
)

// SortKeys lists the keys in item table column order.
var SortKeys = []SortKey{
	SortBySport,
	SortByCountry,
	SortByPowerRank,
	SortByProjectedPoints,
	SortByNumMedals,
	SortByLastYearScore,
}

func (k SortKey) Valid() bool {
	for _, key := range SortKeys {
		if key == k {
			return true
		}
	}
	return false
}

func (k SortKey) Textual() bool {
	return k == SortBySport || k == SortByCountry
}

// DefaultDirection is the direction a key starts with when first selected.
func (k SortKey) DefaultDirection() SortDirection {
	switch k {
	case SortByPowerRank, SortBySport, SortByCountry:
		return SortAscending
	default:
		return SortDescending
	}
}

func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if !key.Valid() {
		return "", fmt.Errorf("unknown sort key %q", raw)
	}
	return key, nil
}

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

func (d SortDirection) Flip() SortDirection {
	if d == SortAscending {
		return SortDescending
	}
	return SortAscending
}

type Sort struct {
	Key       SortKey
	Direction SortDirection
}

func DefaultSort() Sort {
	return Sort{Key: SortByProjectedPoints, Direction: SortDescending}
}

// Toggle flips the direction when key is already active, otherwise switches
// to key with its default direction.
func (s Sort) Toggle(key SortKey) Sort {
	if s.Key == key {
		return Sort{Key: key, Direction: s.Direction.Flip()}
	}
	return Sort{Key: key, Direction: key.DefaultDirection()}
}

type Filters struct {
	Sport     string
	Search    string
	ShowTaken bool
}

type ViewParams struct {
	Sort    Sort
	Filters Filters
}

func DefaultViewParams() ViewParams {
	return ViewParams{Sort: DefaultSort()}
}

package application

import (
	"slices"
	"strings"

	"github.com/bnema/family-draft-cli/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Row is one projection as shown in the item table.
type Row struct {
	domain.Projection
	Taken bool
}

func (r Row) Availability() string {
	if r.Taken {
		return "Taken"
	}
	return "Available"
}

// DeriveRows maps a snapshot and view parameters to the visible, ordered item
// rows. It never modifies the snapshot and returns a fresh slice on every call.
func DeriveRows(snapshot *domain.Snapshot, view domain.ViewParams) []Row {
	if snapshot == nil {
		return nil
	}

	taken := snapshot.TakenSet()
	query := strings.ToLower(view.Filters.Search)

	rows := make([]Row, 0, len(snapshot.Projections))
	for _, p := range snapshot.Projections {
		_, isTaken := taken[p.PairID]
		if isTaken && !view.Filters.ShowTaken {
			continue
		}
		if view.Filters.Sport != "" && p.Sport != view.Filters.Sport {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Country), query) && !strings.Contains(strings.ToLower(p.Sport), query) {
			continue
		}
		rows = append(rows, Row{Projection: p, Taken: isTaken})
	}

	slices.SortStableFunc(rows, rowComparator(view.Sort))
	return rows
}

// SportOptions lists the distinct sports of a snapshot in collation order.
func SportOptions(snapshot *domain.Snapshot) []string {
	if snapshot == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(snapshot.Projections))
	sports := make([]string, 0, len(snapshot.Projections))
	for _, p := range snapshot.Projections {
		if _, ok := seen[p.Sport]; ok {
			continue
		}
		seen[p.Sport] = struct{}{}
		sports = append(sports, p.Sport)
	}

	c := newCollator()
	slices.SortStableFunc(sports, c.CompareString)
	return sports
}

// A collator keeps scratch buffers, so each derivation gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und)
}

func rowComparator(sort domain.Sort) func(a, b Row) int {
	c := newCollator()
	dir := 1
	if sort.Direction == domain.SortDescending {
		dir = -1
	}

	if sort.Key.Textual() {
		return func(a, b Row) int {
			if cmp := c.CompareString(textField(a, sort.Key), textField(b, sort.Key)); cmp != 0 {
				return cmp * dir
			}
			return compareFloat(b.ProjectedPoints.OrLowest(), a.ProjectedPoints.OrLowest())
		}
	}

	return func(a, b Row) int {
		if cmp := compareFloat(numericField(a, sort.Key).OrLowest(), numericField(b, sort.Key).OrLowest()); cmp != 0 {
			return cmp * dir
		}
		if cmp := c.CompareString(a.Sport, b.Sport); cmp != 0 {
			return cmp
		}
		return c.CompareString(a.Country, b.Country)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func textField(r Row, key domain.SortKey) string {
	if key == domain.SortByCountry {
		return r.Country
	}
	return r.Sport
}

func numericField(r Row, key domain.SortKey) domain.Number {
	switch key {
	case domain.SortByPowerRank:
		return r.PowerRank
	case domain.SortByNumMedals:
		return r.NumMedals
	case domain.SortByLastYearScore:
		return r.LastYearScore
	default:
		return r.ProjectedPoints
	}
}

package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/family-draft-cli/internal/application"
	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Sort    domain.Sort
	Filters domain.Filters
	// Cursor highlights rows[Cursor] when ShowCursor is set.
	Cursor     int
	ShowCursor bool
	// MaxRows limits the item table to a window around the cursor. Zero shows
	// every row.
	MaxRows     int
	HideRosters bool
	Notice      application.Notice
	// Problem is a persistent error line, such as a missing endpoint.
	Problem string
}

type column struct {
	title   string
	key     domain.SortKey
	numeric bool
	cell    func(application.Row) string
}

var itemColumns = []column{
	{title: "Sport", key: domain.SortBySport, cell: func(r application.Row) string { return r.Sport }},
	{title: "Country", key: domain.SortByCountry, cell: func(r application.Row) string { return r.Country }},
	{title: "Power rank", key: domain.SortByPowerRank, numeric: true, cell: func(r application.Row) string { return r.PowerRank.Format(0) }},
	{title: "Projected pts", key: domain.SortByProjectedPoints, numeric: true, cell: func(r application.Row) string { return r.ProjectedPoints.Format(1) }},
	{title: "Medals", key: domain.SortByNumMedals, numeric: true, cell: func(r application.Row) string { return r.NumMedals.Format(0) }},
	{title: "Last year", key: domain.SortByLastYearScore, numeric: true, cell: func(r application.Row) string { return r.LastYearScore.Format(1) }},
	{title: "Status", cell: application.Row.Availability},
}

func renderView(snapshot *domain.Snapshot, rows []application.Row, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("Family Draft")}

	if snapshot == nil {
		lines = append(lines, s.empty.Render("Loading draft state…"))
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, messageLines(opts, s)...)...)
	}

	lines = append(lines, statusStrip(snapshot, s))
	lines = append(lines, messageLines(opts, s)...)
	lines = append(lines,
		s.section.Render(leaderboard(snapshot, s)),
		s.section.Render(itemTable(rows, opts, s)),
	)
	if !opts.HideRosters {
		lines = append(lines, s.section.Render(rosters(snapshot, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statusStrip(snapshot *domain.Snapshot, s styles) string {
	pill := s.pillClosed.Render("Draft: CLOSED")
	if snapshot.Config.DraftStatus == domain.DraftStatusOpen {
		pill = s.pillOpen.Render("Draft: OPEN")
	}

	clock := strings.TrimSpace(snapshot.Current.OnTheClock)
	if clock == "" {
		clock = "—"
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		pill,
		"   ",
		s.detail.Render(fmt.Sprintf("Pick %s %s", snapshot.Current.PickNumber.Format(0), snapshot.Current.Direction.Glyph())),
		"   ",
		s.detail.Render("On the clock: "+clock),
	)
}

func messageLines(opts RenderOptions, s styles) []string {
	var lines []string
	if opts.Problem != "" {
		lines = append(lines, s.warning.Render(opts.Problem))
	}
	if opts.Notice.Text == "" {
		return lines
	}

	switch opts.Notice.Level {
	case application.NoticeError:
		lines = append(lines, s.warning.Render(opts.Notice.Text))
	case application.NoticeSuccess:
		lines = append(lines, s.success.Render(opts.Notice.Text))
	default:
		lines = append(lines, s.info.Render(opts.Notice.Text))
	}
	return lines
}

func leaderboard(snapshot *domain.Snapshot, s styles) string {
	lines := []string{s.header.Render("Leaderboard")}
	if len(snapshot.Leaderboard) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("No players yet"))...)
	}

	header := []string{"Rank", "Player", "Projected", "Picks"}
	cells := make([][]string, 0, len(snapshot.Leaderboard))
	for i, entry := range snapshot.Leaderboard {
		cells = append(cells, []string{
			"#" + strconv.Itoa(i+1),
			entry.DisplayName,
			entry.TotalProjectedPoints.Format(1),
			strconv.Itoa(entry.PicksMade),
		})
	}

	numeric := []bool{false, false, true, true}
	widths := columnWidths(header, cells)
	lines = append(lines, s.column.Render(joinCells(header, widths, numeric)))
	for _, row := range cells {
		lines = append(lines, s.detail.Render(joinCells(row, widths, numeric)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func itemTable(rows []application.Row, opts RenderOptions, s styles) string {
	lines := []string{s.header.Render(tableHeading(len(rows), opts.Filters))}
	if len(rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("No items match the current filters."))...)
	}

	header := make([]string, len(itemColumns))
	numeric := make([]bool, len(itemColumns))
	for i, col := range itemColumns {
		header[i] = col.title + sortMarker(col.key, opts.Sort)
		numeric[i] = col.numeric
	}

	first, last := window(len(rows), opts)
	cells := make([][]string, 0, last-first)
	for _, row := range rows[first:last] {
		line := make([]string, len(itemColumns))
		for i, col := range itemColumns {
			line[i] = col.cell(row)
		}
		cells = append(cells, line)
	}

	widths := columnWidths(header, cells)
	lines = append(lines, s.column.Render(joinCells(header, widths, numeric)))
	for i, line := range cells {
		index := first + i
		text := joinCells(line, widths, numeric)
		switch {
		case opts.ShowCursor && index == opts.Cursor:
			lines = append(lines, s.cursor.Render(text))
		case rows[index].Taken:
			lines = append(lines, s.taken.Render(text))
		default:
			lines = append(lines, s.available.Render(text))
		}
	}

	if first > 0 || last < len(rows) {
		lines = append(lines, s.empty.Render(fmt.Sprintf("rows %d–%d of %d", first+1, last, len(rows))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func tableHeading(count int, filters domain.Filters) string {
	parts := []string{fmt.Sprintf("Items: %d", count)}
	if filters.Sport != "" {
		parts = append(parts, "sport="+filters.Sport)
	}
	if filters.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", filters.Search))
	}
	if filters.ShowTaken {
		parts = append(parts, "showing taken")
	}
	return strings.Join(parts, "  ")
}

func sortMarker(key domain.SortKey, sort domain.Sort) string {
	if key == "" || key != sort.Key {
		return ""
	}
	if sort.Direction == domain.SortAscending {
		return " ▲"
	}
	return " ▼"
}

// window returns the slice bounds of the visible rows, keeping the cursor
// roughly centred.
func window(total int, opts RenderOptions) (int, int) {
	if opts.MaxRows <= 0 || total <= opts.MaxRows {
		return 0, total
	}

	first := 0
	if opts.ShowCursor {
		first = opts.Cursor - opts.MaxRows/2
	}
	first = max(0, min(first, total-opts.MaxRows))
	return first, first + opts.MaxRows
}

func rosters(snapshot *domain.Snapshot, s styles) string {
	lines := []string{s.header.Render("Teams")}
	if len(snapshot.Players) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.empty.Render("No players yet"))...)
	}

	cards := make([]string, 0, len(snapshot.Players))
	for _, player := range snapshot.Players {
		cards = append(cards, rosterCard(snapshot, player, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, append(lines, cards...)...)
}

func rosterCard(snapshot *domain.Snapshot, player domain.Player, s styles) string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.player.Render(player.DisplayName),
		"  ",
		s.total.Render(snapshot.TotalFor(player.ID).Format(1)+" pts"),
	)

	items := snapshot.Teams[player.ID]
	if len(items) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "  "+s.empty.Render("No picks yet"))
	}

	cells := make([][]string, 0, len(items))
	for _, item := range items {
		cells = append(cells, []string{item.Sport, item.Country, item.ProjectedPoints.Format(1)})
	}
	numeric := []bool{false, false, true}
	widths := columnWidths(nil, cells)

	lines := []string{title}
	for _, row := range cells {
		lines = append(lines, "  "+s.detail.Render(joinCells(row, widths, numeric)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func columnWidths(header []string, rows [][]string) []int {
	n := len(header)
	if n == 0 && len(rows) > 0 {
		n = len(rows[0])
	}

	widths := make([]int, n)
	for i, title := range header {
		widths[i] = lipgloss.Width(title)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

func joinCells(cells []string, widths []int, numeric []bool) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		gap := strings.Repeat(" ", max(0, widths[i]-lipgloss.Width(cell)))
		if numeric[i] {
			padded[i] = gap + cell
		} else {
			padded[i] = cell + gap
		}
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

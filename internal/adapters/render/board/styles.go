package board

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	pillOpen   lipgloss.Style
	pillClosed lipgloss.Style
	detail     lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	column     lipgloss.Style
	cursor     lipgloss.Style
	taken      lipgloss.Style
	available  lipgloss.Style
	player     lipgloss.Style
	total      lipgloss.Style
	info       lipgloss.Style
	success    lipgloss.Style
	warning    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		pillOpen:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		pillClosed: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		column:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250")),
		cursor:     lipgloss.NewStyle().Reverse(true),
		taken:      lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		available:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		player:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		total:      lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		info:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		success:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}

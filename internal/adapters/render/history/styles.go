package history

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title lipgloss.Style
	date  lipgloss.Style
	steps lipgloss.Style
	today lipgloss.Style
	empty lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true),
		date:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(8),
		steps: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		today: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		empty: lipgloss.NewStyle().Faint(true),
	}
}

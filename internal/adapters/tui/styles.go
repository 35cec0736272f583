package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	clock    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	status   lipgloss.Style
	warning  lipgloss.Style
	notice   lipgloss.Style
	button   lipgloss.Style
	disabled lipgloss.Style
	help     lipgloss.Style
	err      lipgloss.Style
	section  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		clock:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10),
		value:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		button:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		disabled: lipgloss.NewStyle().Faint(true),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
	}
}

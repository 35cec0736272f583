package tui

import (
	"fmt"

	historyrender "github.com/bnema/stride/internal/adapters/render/history"
	"github.com/bnema/stride/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	unsupportedAdvisory = "This device does not provide motion data. Step counting is unavailable."
	permissionAdvisory  = "Motion access is required to count steps. Allow? [y/n]"
)

func (m Model) View() string {
	s := m.styles
	v := m.view

	lines := []string{
		s.title.Render("Step Counter"),
		s.clock.Render(domain.FormatClock(m.now)),
	}

	if v.ShowUnsupported {
		lines = append(lines, s.warning.Render(unsupportedAdvisory))
	}
	if v.ShowPermissionNotice {
		lines = append(lines, s.notice.Render(permissionAdvisory))
	}

	stats := lipgloss.JoinVertical(
		lipgloss.Left,
		m.stat("Steps", fmt.Sprintf("%d", v.Steps)),
		m.stat("Distance", v.Distance+" km"),
		m.stat("Duration", v.Duration),
	)
	lines = append(lines, s.section.Render(stats), s.section.Render(s.status.Render(v.Status)))

	button := s.button
	if !v.StartEnabled {
		button = s.disabled
	}
	lines = append(lines, lipgloss.JoinHorizontal(
		lipgloss.Top,
		button.Render("[ "+v.ButtonLabel+" ]"),
		"  ",
		s.help.Render("s start/stop  r reset  q quit"),
	))

	if m.err != nil {
		lines = append(lines, s.err.Render(m.err.Error()))
	}

	history := historyrender.View(m.history, historyrender.RenderOptions{
		Locale: m.opts.Render.Locale,
		Today:  domain.DateOf(m.now),
	})
	lines = append(lines, s.section.Render(history))

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m Model) stat(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.styles.label.Render(label), m.styles.value.Render(value))
}

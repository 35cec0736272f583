package history

import (
	"github.com/bnema/stride/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const EmptyMessage = "No history yet. Start tracking steps!"

type RenderOptions struct {
	// Locale drives digit grouping of step counts. Zero value means English.
	Locale language.Tag
	// Today, when set, highlights the entry for that date.
	Today string
}

// View renders log most recent first. It is pure so the live dashboard can
// embed it directly.
func View(log domain.HistoryLog, opts RenderOptions) string {
	return renderView(log, opts, newStyles())
}

func renderView(log domain.HistoryLog, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("Last 7 days")}

	if len(log) == 0 {
		lines = append(lines, s.empty.Render(EmptyMessage))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	printer := message.NewPrinter(localeOrDefault(opts.Locale))
	for _, entry := range log.MostRecentFirst() {
		count := s.steps
		if opts.Today != "" && entry.Date == opts.Today {
			count = s.today
		}

		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.date.Render(entry.ShortLabel()),
			count.Render(printer.Sprintf("%d steps", entry.Steps)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func localeOrDefault(tag language.Tag) language.Tag {
	if tag == language.Und {
		return language.English
	}
	return tag
}

// ParseLocale accepts BCP 47 tags and falls back to English.
func ParseLocale(value string) language.Tag {
	tag, err := language.Parse(value)
	if err != nil {
		return language.English
	}
	return tag
}

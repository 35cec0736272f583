package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/stride/internal/shell"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type installFunc func(ctx context.Context, report func(shell.InstallProgress)) error

type assetCachedMsg shell.InstallProgress

type installFinishedMsg struct {
	err error
}

var (
	installCountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	installAssetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// installProgressModel tracks how many shell assets have been cached while
// the install command runs.
type installProgressModel struct {
	spinner  spinner.Model
	cacheFor string
	last     shell.InstallProgress
	finished bool
	err      error
	run      tea.Cmd
}

func newInstallProgressModel(cacheName string, run tea.Cmd) installProgressModel {
	return installProgressModel{
		spinner:  spinner.New(spinner.WithSpinner(spinner.Points)),
		cacheFor: cacheName,
		run:      run,
	}
}

func (m installProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m installProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case assetCachedMsg:
		m.last = shell.InstallProgress(msg)
		return m, nil
	case installFinishedMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m installProgressModel) View() string {
	if m.finished {
		return ""
	}
	if m.last.Total == 0 {
		return fmt.Sprintf("%s pre-caching %s", m.spinner.View(), m.cacheFor)
	}

	count := installCountStyle.Render(fmt.Sprintf("%d/%d", m.last.Cached, m.last.Total))
	return fmt.Sprintf("%s pre-caching %s %s %s", m.spinner.View(), m.cacheFor, count, installAssetStyle.Render(m.last.Asset))
}

// runInstallProgress runs install while rendering the cached asset count on
// output. It returns the number of assets cached.
func runInstallProgress(ctx context.Context, output io.Writer, cacheName string, install installFunc) (int, error) {
	var p *tea.Program
	run := func() tea.Msg {
		err := install(ctx, func(progress shell.InstallProgress) {
			p.Send(assetCachedMsg(progress))
		})
		return installFinishedMsg{err: err}
	}

	p = tea.NewProgram(
		newInstallProgressModel(cacheName, run),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return 0, err
	}

	model, ok := final.(installProgressModel)
	if !ok {
		return 0, fmt.Errorf("unexpected final install model type %T", final)
	}
	return model.last.Cached, model.err
}

package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/stride/internal/application"
	"github.com/bnema/stride/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

// Bridge forwards controller and history updates into a running program.
// Updates sent before a program is attached are dropped.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

var (
	_ application.Presenter       = (*Bridge)(nil)
	_ application.HistoryRenderer = (*Bridge)(nil)
)

func (b *Bridge) Attach(program *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.program = program
}

func (b *Bridge) Render(view application.SessionView) {
	b.send(viewMsg(view))
}

func (b *Bridge) RenderHistory(log domain.HistoryLog) {
	b.send(historyMsg(log))
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	program := b.program
	b.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

type RunOptions struct {
	Input  io.Reader
	Output io.Writer
	// AltScreen switches to the terminal's alternate screen buffer.
	AltScreen bool
	// InputTTY reads keys from the controlling terminal, for when stdin
	// carries motion samples.
	InputTTY bool
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, model Model, bridge *Bridge, opts RunOptions) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	switch {
	case opts.InputTTY:
		programOpts = append(programOpts, tea.WithInputTTY())
	case opts.Input != nil:
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	p := tea.NewProgram(model, programOpts...)
	bridge.Attach(p)
	defer bridge.Attach(nil)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run dashboard: %w", err)
	}

	return nil
}

package tui

import (
	"context"
	"errors"
	"time"

	historyrender "github.com/bnema/stride/internal/adapters/render/history"
	"github.com/bnema/stride/internal/application"
	"github.com/bnema/stride/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

// Session is the slice of the session controller the dashboard drives.
type Session interface {
	Toggle(ctx context.Context) error
	Reset(ctx context.Context) error
	Snapshot() application.SessionView
}

type Options struct {
	History domain.HistoryLog
	Render  historyrender.RenderOptions
	Now     func() time.Time
	// Answers receives y/n replies while a permission prompt is showing.
	Answers chan<- bool
}

type (
	viewMsg    application.SessionView
	historyMsg domain.HistoryLog
	clockMsg   time.Time
	actionMsg  struct{ err error }
)

type Model struct {
	ctx     context.Context
	session Session
	opts    Options
	styles  styles

	view    application.SessionView
	history domain.HistoryLog
	now     time.Time
	err     error
}

func New(ctx context.Context, session Session, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return Model{
		ctx:     ctx,
		session: session,
		opts:    opts,
		styles:  newStyles(),
		view:    session.Snapshot(),
		history: opts.History,
		now:     opts.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickClock()
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clockMsg:
		m.now = time.Time(msg)
		return m, tickClock()
	case viewMsg:
		m.view = application.SessionView(msg)
		return m, nil
	case historyMsg:
		m.history = domain.HistoryLog(msg)
		return m, nil
	case actionMsg:
		m.err = visibleError(msg.err)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "s", " ", "enter":
		if !m.view.StartEnabled {
			return m, nil
		}
		return m, m.action(m.session.Toggle)
	case "r":
		return m, m.action(m.session.Reset)
	case "y", "n":
		if m.view.ShowPermissionNotice && m.opts.Answers != nil {
			select {
			case m.opts.Answers <- msg.String() == "y":
			default:
			}
		}
		return m, nil
	}

	return m, nil
}

// action runs a controller call off the event loop; the controller renders
// back through Bridge while it runs.
func (m Model) action(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{err: fn(ctx)}
	}
}

// visibleError hides failures the status line already explains.
func visibleError(err error) error {
	switch {
	case err == nil,
		errors.Is(err, domain.ErrCapabilityMissing),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrPermissionPending),
		errors.Is(err, domain.ErrStartDisabled):
		return nil
	default:
		return err
	}
}

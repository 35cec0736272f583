package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bnema/stride/internal/application"
	"github.com/bnema/stride/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	view    application.SessionView
	toggles int
	resets  int
	err     error
}

func (f *fakeSession) Toggle(context.Context) error {
	f.toggles++
	return f.err
}

func (f *fakeSession) Reset(context.Context) error {
	f.resets++
	return f.err
}

func (f *fakeSession) Snapshot() application.SessionView {
	return f.view
}

func idleView() application.SessionView {
	return application.SessionView{
		Phase:        application.PhaseIdle,
		Distance:     "0.00",
		Duration:     "00:00:00",
		Status:       "Press 'Start' to begin tracking.",
		ButtonLabel:  "Start Tracking",
		StartEnabled: true,
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 15, 9, 5, 3, 0, time.Local)
}

func newTestModel(session *fakeSession, answers chan<- bool) Model {
	return New(context.Background(), session, Options{Now: fixedNow, Answers: answers})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func TestViewShowsClockStatsAndEmptyHistory(t *testing.T) {
	m := newTestModel(&fakeSession{view: idleView()}, nil)

	out := m.View()

	assert.Contains(t, out, "Monday, January 15, 2024 | 09:05:03")
	assert.Contains(t, out, "Steps")
	assert.Contains(t, out, "0.00 km")
	assert.Contains(t, out, "00:00:00")
	assert.Contains(t, out, "Start Tracking")
	assert.Contains(t, out, "Press 'Start' to begin tracking.")
	assert.Contains(t, out, "No history yet. Start tracking steps!")
}

func TestToggleKeyRunsControllerOffLoop(t *testing.T) {
	session := &fakeSession{view: idleView()}
	m := newTestModel(session, nil)

	m, cmd := press(t, m, runes("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, 0, session.toggles)

	msg := cmd()
	assert.Equal(t, 1, session.toggles)

	next, _ := m.Update(msg)
	assert.Nil(t, next.(Model).err)
}

func TestToggleIgnoredWhenStartDisabled(t *testing.T) {
	view := idleView()
	view.StartEnabled = false
	session := &fakeSession{view: view}

	_, cmd := press(t, newTestModel(session, nil), runes("s"))

	assert.Nil(t, cmd)
}

func TestResetKey(t *testing.T) {
	session := &fakeSession{view: idleView()}

	_, cmd := press(t, newTestModel(session, nil), runes("r"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, 1, session.resets)
}

func TestQuitKey(t *testing.T) {
	_, cmd := press(t, newTestModel(&fakeSession{view: idleView()}, nil), runes("q"))
	require.NotNil(t, cmd)

	assert.Equal(t, tea.Quit(), cmd())
}

func TestPermissionAnswersOnlyWhilePrompting(t *testing.T) {
	answers := make(chan bool, 1)
	session := &fakeSession{view: idleView()}
	m := newTestModel(session, answers)

	m, _ = press(t, m, runes("y"))
	assert.Len(t, answers, 0)

	prompting := idleView()
	prompting.Phase = application.PhasePermissionPending
	prompting.StartEnabled = false
	prompting.ShowPermissionNotice = true
	next, _ := m.Update(viewMsg(prompting))
	m = next.(Model)
	assert.Contains(t, m.View(), permissionAdvisory)

	m, _ = press(t, m, runes("n"))
	require.Len(t, answers, 1)
	assert.False(t, <-answers)
}

func TestUpdateAppliesControllerViews(t *testing.T) {
	m := newTestModel(&fakeSession{view: idleView()}, nil)

	tracking := idleView()
	tracking.Phase = application.PhaseTracking
	tracking.Steps = 1234
	tracking.Distance = "0.94"
	tracking.Duration = "00:10:05"
	tracking.ButtonLabel = "Stop Tracking"
	next, _ := m.Update(viewMsg(tracking))
	out := next.(Model).View()

	assert.Contains(t, out, "1234")
	assert.Contains(t, out, "0.94 km")
	assert.Contains(t, out, "00:10:05")
	assert.Contains(t, out, "Stop Tracking")
}

func TestUpdateAppliesHistory(t *testing.T) {
	m := newTestModel(&fakeSession{view: idleView()}, nil)

	next, _ := m.Update(historyMsg(domain.HistoryLog{{Date: "2024-01-15", Steps: 2500}}))

	assert.Contains(t, next.(Model).View(), "2,500 steps")
}

func TestUnsupportedAdvisory(t *testing.T) {
	view := idleView()
	view.Phase = application.PhaseDisabled
	view.ShowUnsupported = true

	assert.Contains(t, newTestModel(&fakeSession{view: view}, nil).View(), unsupportedAdvisory)
}

func TestClockTickAdvancesClock(t *testing.T) {
	m := newTestModel(&fakeSession{view: idleView()}, nil)

	next, cmd := m.Update(clockMsg(fixedNow().Add(time.Second)))

	require.NotNil(t, cmd)
	assert.Contains(t, next.(Model).View(), "09:05:04")
}

func TestVisibleErrorHidesExplainedFailures(t *testing.T) {
	assert.Nil(t, visibleError(domain.ErrPermissionDenied))
	assert.Nil(t, visibleError(fmt.Errorf("start: %w", domain.ErrCapabilityMissing)))

	storage := errors.New("save history: storage unavailable")
	assert.Equal(t, storage, visibleError(storage))
}

func TestActionErrorIsShown(t *testing.T) {
	m := newTestModel(&fakeSession{view: idleView()}, nil)

	next, _ := m.Update(actionMsg{err: errors.New("save history: disk full")})

	assert.Contains(t, next.(Model).View(), "disk full")
}

func TestBridgeDropsUpdatesWithoutProgram(t *testing.T) {
	var bridge Bridge

	assert.NotPanics(t, func() {
		bridge.Render(idleView())
		bridge.RenderHistory(nil)
	})
}

package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/stride/internal/domain"
	"github.com/bnema/stride/internal/ports"
)

const tickInterval = time.Second

// SessionController owns the session state and the idle/tracking state
// machine. Sensor delivery, the duration tick and user actions may arrive on
// different goroutines; every handler runs under mu.
type SessionController struct {
	mu sync.Mutex

	sensor    ports.MotionSensor
	history   *HistoryService
	scheduler ports.Scheduler
	presenter Presenter
	logger    ports.Logger

	phase           Phase
	state           domain.SessionState
	status          string
	denied          bool
	showUnsupported bool
	showPermission  bool

	// generation invalidates sample and tick callbacks from a previous
	// tracking run that are still in flight.
	generation   uint64
	subscription ports.Subscription
	stopTick     func()
}

type SessionOption func(*SessionController)

func WithScheduler(scheduler ports.Scheduler) SessionOption {
	return func(c *SessionController) {
		if scheduler != nil {
			c.scheduler = scheduler
		}
	}
}

func WithPresenter(presenter Presenter) SessionOption {
	return func(c *SessionController) {
		if presenter != nil {
			c.presenter = presenter
		}
	}
}

func WithSessionLogger(logger ports.Logger) SessionOption {
	return func(c *SessionController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewSessionController(sensor ports.MotionSensor, history *HistoryService, opts ...SessionOption) *SessionController {
	c := &SessionController{
		sensor:    sensor,
		history:   history,
		scheduler: ports.SystemScheduler{},
		presenter: nopPresenter{},
		logger:    ports.NopLogger{},
		phase:     PhaseIdle,
		status:    statusReady,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *SessionController) SetPresenter(presenter Presenter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if presenter == nil {
		presenter = nopPresenter{}
	}
	c.presenter = presenter
}

func (c *SessionController) Start(ctx context.Context) error {
	c.mu.Lock()

	switch c.phase {
	case PhaseDisabled:
		c.mu.Unlock()
		return domain.ErrStartDisabled
	case PhasePermissionPending:
		c.mu.Unlock()
		return domain.ErrPermissionPending
	case PhaseTracking:
		c.mu.Unlock()
		return nil
	}

	capability := c.sensor.Capability()
	if !capability.Available {
		c.phase = PhaseDisabled
		c.showUnsupported = true
		c.status = statusNotSupported
		c.renderLocked()
		c.mu.Unlock()
		c.logger.Warnf("start rejected: %v", domain.ErrCapabilityMissing)
		return domain.ErrCapabilityMissing
	}

	if !capability.RequiresPermission {
		defer c.mu.Unlock()
		return c.beginTrackingLocked()
	}

	c.phase = PhasePermissionPending
	c.showPermission = true
	c.status = statusPermissionPending
	c.renderLocked()
	c.mu.Unlock()

	permission, err := c.sensor.RequestPermission(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.showPermission = false

	if err != nil {
		c.phase = PhaseIdle
		c.status = statusPermissionError
		c.renderLocked()
		c.logger.Errorf("request motion permission: %v", err)
		return fmt.Errorf("%w: %w", domain.ErrPermissionRequestFailed, err)
	}

	if permission != ports.PermissionGranted {
		c.phase = PhaseDisabled
		c.denied = true
		c.status = statusPermissionDenied
		c.renderLocked()
		c.logger.Warnf("motion permission %s", permission)
		return domain.ErrPermissionDenied
	}

	return c.beginTrackingLocked()
}

func (c *SessionController) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseTracking {
		return nil
	}

	return c.stopLocked(ctx)
}

func (c *SessionController) Toggle(ctx context.Context) error {
	c.mu.Lock()
	tracking := c.phase == PhaseTracking
	c.mu.Unlock()

	if tracking {
		return c.Stop(ctx)
	}

	return c.Start(ctx)
}

// Reset stops a running session, saves the pre-reset count and zeroes the
// session. A disabled session stays disabled.
func (c *SessionController) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The permission prompt owns the session until it resolves.
	if c.phase == PhasePermissionPending {
		return domain.ErrPermissionPending
	}

	var errs []error
	if c.phase == PhaseTracking {
		if err := c.stopLocked(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := c.history.SaveToday(ctx, c.state.StepCount); err != nil {
		c.logger.Errorf("save history on reset: %v", err)
		errs = append(errs, err)
	}

	c.releaseLocked()
	c.state.Reset()
	c.status = statusReset
	c.renderLocked()
	c.logger.Infof("session reset")

	return errors.Join(errs...)
}

func (c *SessionController) HandleSample(sample domain.MotionSample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handleSampleLocked(c.generation, sample)
}

func (c *SessionController) Snapshot() SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.viewLocked()
}

func (c *SessionController) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *SessionController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase
}

func (c *SessionController) beginTrackingLocked() error {
	c.generation++
	generation := c.generation

	subscription, err := c.sensor.Subscribe(func(sample domain.MotionSample) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.handleSampleLocked(generation, sample)
	})
	if err != nil {
		c.phase = PhaseIdle
		c.status = statusPermissionError
		c.renderLocked()
		return fmt.Errorf("subscribe to motion sensor: %w", err)
	}

	c.subscription = subscription
	c.stopTick = c.scheduler.Every(tickInterval, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.tickLocked(generation)
	})

	c.phase = PhaseTracking
	c.state.IsRunning = true
	c.status = statusTracking
	c.renderLocked()
	c.logger.Infof("tracking started at %d steps", c.state.StepCount)

	return nil
}

func (c *SessionController) stopLocked(ctx context.Context) error {
	c.releaseLocked()
	c.phase = PhaseIdle
	c.state.IsRunning = false

	steps := c.state.StepCount
	err := c.history.SaveToday(ctx, steps)

	c.status = fmt.Sprintf("Tracking paused. Total steps: %d.", steps)
	c.renderLocked()
	c.logger.Infof("tracking stopped at %d steps after %s", steps, domain.FormatDuration(c.state.DurationSeconds))

	if err != nil {
		c.logger.Errorf("save history on stop: %v", err)
		return fmt.Errorf("save history: %w", err)
	}

	return nil
}

// releaseLocked drops the motion subscription and the duration tick. Safe to
// call when neither is held.
func (c *SessionController) releaseLocked() {
	c.generation++

	if c.subscription != nil {
		c.subscription.Unsubscribe()
		c.subscription = nil
	}
	if c.stopTick != nil {
		c.stopTick()
		c.stopTick = nil
	}
}

func (c *SessionController) handleSampleLocked(generation uint64, sample domain.MotionSample) {
	if c.phase != PhaseTracking || generation != c.generation {
		return
	}

	if _, fired := c.state.ApplySample(sample); fired {
		c.renderLocked()
	}
}

func (c *SessionController) tickLocked(generation uint64) {
	if c.phase != PhaseTracking || generation != c.generation {
		return
	}

	c.state.DurationSeconds++
	c.renderLocked()
}

func (c *SessionController) renderLocked() {
	c.presenter.Render(c.viewLocked())
}

func (c *SessionController) viewLocked() SessionView {
	view := SessionView{
		Phase:                c.phase,
		Steps:                c.state.StepCount,
		Distance:             domain.FormatDistance(c.state.DistanceKm()),
		Duration:             domain.FormatDuration(c.state.DurationSeconds),
		Status:               c.status,
		ButtonLabel:          buttonStart,
		StartEnabled:         true,
		ShowUnsupported:      c.showUnsupported,
		ShowPermissionNotice: c.showPermission,
	}

	switch c.phase {
	case PhaseTracking:
		view.ButtonLabel = buttonStop
	case PhasePermissionPending:
		view.StartEnabled = false
	case PhaseDisabled:
		view.StartEnabled = false
		if c.denied {
			view.ButtonLabel = buttonPermissionDenied
		}
	}

	return view
}

package application

import "github.com/bnema/stride/internal/domain"

type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhasePermissionPending Phase = "permission_pending"
	PhaseTracking          Phase = "tracking"
	PhaseDisabled          Phase = "disabled"
)

const (
	buttonStart            = "Start Tracking"
	buttonStop             = "Stop Tracking"
	buttonPermissionDenied = "Permission Denied"

	statusReady             = "Press 'Start' to begin tracking."
	statusNotSupported      = "Motion sensor not supported."
	statusPermissionDenied  = "Permission denied. Cannot track steps."
	statusPermissionError   = "Error requesting motion permission."
	statusPermissionPending = "Waiting for motion permission..."
	statusTracking          = "Tracking active. Start walking!"
	statusReset             = "Counter reset. Press 'Start' to begin tracking."
)

// SessionView is everything the presentation layer needs to draw a session.
type SessionView struct {
	Phase                Phase  `json:"phase"`
	Steps                uint   `json:"steps"`
	Distance             string `json:"distance_km"`
	Duration             string `json:"duration"`
	Status               string `json:"status"`
	ButtonLabel          string `json:"button_label"`
	StartEnabled         bool   `json:"start_enabled"`
	ShowUnsupported      bool   `json:"show_unsupported"`
	ShowPermissionNotice bool   `json:"show_permission_notice"`
}

type Presenter interface {
	Render(view SessionView)
}

type HistoryRenderer interface {
	RenderHistory(log domain.HistoryLog)
}

type PresenterFunc func(SessionView)

func (f PresenterFunc) Render(view SessionView) { f(view) }

type HistoryRendererFunc func(domain.HistoryLog)

func (f HistoryRendererFunc) RenderHistory(log domain.HistoryLog) { f(log) }

type nopPresenter struct{}

func (nopPresenter) Render(SessionView)               {}
func (nopPresenter) RenderHistory(domain.HistoryLog) {}

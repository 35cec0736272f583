package domain

type SessionState struct {
	StepCount         uint
	IsRunning         bool
	LastStepTimeMs    int64
	LastVerticalAccel float64
	DurationSeconds   uint
}

func (s *SessionState) Reset() {
	if s == nil {
		return
	}

	*s = SessionState{}
}

func (s SessionState) DistanceKm() float64 {
	return DistanceKm(s.StepCount)
}

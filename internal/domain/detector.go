package domain

import "math"

const (
	AccelerationThreshold = 1.25
	StepDebounceMs        = 200
	StepLengthM           = 0.76
)

// ApplySample runs the threshold and debounce gate against s. The debounce
// window is measured from the last fired step, not from the previous sample,
// and does not apply before the first step.
func (s *SessionState) ApplySample(sample MotionSample) (StepEvent, bool) {
	if sample.MissingVertical {
		return StepEvent{}, false
	}

	delta := sample.VerticalAcceleration - s.LastVerticalAccel
	s.LastVerticalAccel = sample.VerticalAcceleration

	if math.Abs(delta) <= AccelerationThreshold {
		return StepEvent{}, false
	}
	if s.hasStepped() && sample.TimestampMs-s.LastStepTimeMs <= StepDebounceMs {
		return StepEvent{}, false
	}

	s.StepCount++
	s.LastStepTimeMs = sample.TimestampMs

	return StepEvent{
		Count:       s.StepCount,
		DistanceKm:  DistanceKm(s.StepCount),
		TimestampMs: sample.TimestampMs,
	}, true
}

func (s *SessionState) hasStepped() bool {
	return s.StepCount > 0 || s.LastStepTimeMs != 0
}

func DistanceKm(steps uint) float64 {
	return float64(steps) * StepLengthM / 1000
}

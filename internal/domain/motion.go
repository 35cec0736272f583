package domain

// MotionSample is a single reading from the motion sensor. Samples are
// transient and never persisted.
type MotionSample struct {
	VerticalAcceleration float64
	TimestampMs          int64
	// MissingVertical is set when the device reported no gravity-inclusive
	// vertical component for this reading.
	MissingVertical bool
}

type StepEvent struct {
	Count       uint
	DistanceKm  float64
	TimestampMs int64
}

package ports

import (
	"context"

	"github.com/bnema/stride/internal/domain"
)

type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

type SensorCapability struct {
	Available          bool
	RequiresPermission bool
}

type Subscription interface {
	Unsubscribe()
}

type MotionSensor interface {
	Capability() SensorCapability
	// RequestPermission blocks until the user answers or ctx is done.
	RequestPermission(ctx context.Context) (PermissionState, error)
	Subscribe(handler func(domain.MotionSample)) (Subscription, error)
}

package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/stride/internal/domain"
	"github.com/bnema/stride/internal/ports"
)

// Prompter asks the user whether motion access is allowed.
type Prompter func(ctx context.Context) (bool, error)

// Sensor puts an explicit permission prompt in front of another sensor. The
// answer is remembered for the lifetime of the process.
type Sensor struct {
	inner  ports.MotionSensor
	prompt Prompter

	mu       sync.Mutex
	decision ports.PermissionState
}

var _ ports.MotionSensor = (*Sensor)(nil)

var errNilPrompter = errors.New("permission prompter is nil")

func New(inner ports.MotionSensor, prompt Prompter) (*Sensor, error) {
	if inner == nil {
		return nil, errors.New("motion sensor is nil")
	}
	if prompt == nil {
		return nil, errNilPrompter
	}

	return &Sensor{inner: inner, prompt: prompt}, nil
}

func (s *Sensor) Capability() ports.SensorCapability {
	capability := s.inner.Capability()
	capability.RequiresPermission = true
	return capability
}

func (s *Sensor) RequestPermission(ctx context.Context) (ports.PermissionState, error) {
	s.mu.Lock()
	decision := s.decision
	s.mu.Unlock()
	if decision != "" {
		return decision, nil
	}

	allowed, err := s.prompt(ctx)
	if err != nil {
		return "", fmt.Errorf("prompt for motion permission: %w", err)
	}

	decision = ports.PermissionDenied
	if allowed {
		decision = ports.PermissionGranted
	}

	s.mu.Lock()
	s.decision = decision
	s.mu.Unlock()

	return decision, nil
}

func (s *Sensor) Subscribe(handler func(domain.MotionSample)) (ports.Subscription, error) {
	s.mu.Lock()
	decision := s.decision
	s.mu.Unlock()

	if decision != ports.PermissionGranted {
		return nil, domain.ErrPermissionDenied
	}

	return s.inner.Subscribe(handler)
}

// Allow answers every prompt with yes.
func Allow(context.Context) (bool, error) {
	return true, nil
}

// Answers waits for the next value on answers. The channel is typically fed
// by an interactive front end.
func Answers(answers <-chan bool) Prompter {
	return func(ctx context.Context) (bool, error) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case allowed, ok := <-answers:
			if !ok {
				return false, errors.New("permission prompt closed")
			}
			return allowed, nil
		}
	}
}

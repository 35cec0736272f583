package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/stride/internal/domain"
	"github.com/bnema/stride/internal/ports"
)

type fakeSensor struct {
	mu           sync.Mutex
	capability   ports.SensorCapability
	permission   ports.PermissionState
	permErr      error
	permGate     chan struct{}
	permRequests int
	handler      func(domain.MotionSample)
	subscribes   int
	unsubscribes int
}

func newFakeSensor() *fakeSensor {
	return &fakeSensor{
		capability: ports.SensorCapability{Available: true},
		permission: ports.PermissionGranted,
	}
}

func (s *fakeSensor) Capability() ports.SensorCapability {
	return s.capability
}

func (s *fakeSensor) RequestPermission(ctx context.Context) (ports.PermissionState, error) {
	s.mu.Lock()
	s.permRequests++
	gate := s.permGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return s.permission, s.permErr
}

func (s *fakeSensor) Subscribe(handler func(domain.MotionSample)) (ports.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handler = handler
	s.subscribes++
	return fakeSubscription{sensor: s}, nil
}

// emit delivers a sample the way a sensor goroutine would.
func (s *fakeSensor) emit(sample domain.MotionSample) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(sample)
	}
}

func (s *fakeSensor) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler != nil
}

type fakeSubscription struct {
	sensor *fakeSensor
}

func (f fakeSubscription) Unsubscribe() {
	f.sensor.mu.Lock()
	defer f.sensor.mu.Unlock()
	f.sensor.handler = nil
	f.sensor.unsubscribes++
}

type fakeScheduler struct {
	mu      sync.Mutex
	fn      func()
	started int
	stopped int
}

func (s *fakeScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fn = fn
	s.started++
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.fn = nil
		s.stopped++
	}
}

func (s *fakeScheduler) tick() {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *fakeScheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn != nil
}

type recordingPresenter struct {
	mu    sync.Mutex
	views []SessionView
}

func (p *recordingPresenter) Render(view SessionView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, view)
}

func (p *recordingPresenter) last() SessionView {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.views) == 0 {
		return SessionView{}
	}
	return p.views[len(p.views)-1]
}

type countingStore struct {
	mu     sync.Mutex
	values map[string]string
	puts   int
	putErr error
}

func newCountingStore() *countingStore {
	return &countingStore{values: map[string]string{}}
}

func (s *countingStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

func (s *countingStore) Put(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = value
	return nil
}

func (s *countingStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *countingStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

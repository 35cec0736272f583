package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bnema/stride/internal/domain"
	"github.com/bnema/stride/internal/ports"
)

// StdinSource selects standard input as the sample source.
const StdinSource = "-"

// Sensor turns a line-oriented sample stream into motion events. The stream
// is read by a single pump goroutine started on the first Subscribe; samples
// read while nobody is subscribed are dropped.
type Sensor struct {
	mu       sync.Mutex
	source   io.Reader
	pace     bool
	logger   ports.Logger
	started  bool
	nextID   uint64
	handlers map[uint64]func(domain.MotionSample)
	err      error

	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once
}

var _ ports.MotionSensor = (*Sensor)(nil)

type Option func(*Sensor)

// WithPacing delays each sample by the timestamp gap to the previous one so
// a recording plays back at its original speed.
func WithPacing(enabled bool) Option {
	return func(s *Sensor) {
		s.pace = enabled
	}
}

func WithLogger(logger ports.Logger) Option {
	return func(s *Sensor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wraps source. A nil source reports the sensor as unavailable.
func New(source io.Reader, opts ...Option) *Sensor {
	s := &Sensor{
		source:   source,
		logger:   ports.NopLogger{},
		handlers: map[uint64]func(domain.MotionSample){},
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Open resolves a configured source: empty means no sensor, "-" means stdin,
// anything else is a file path.
func Open(source string, stdin io.Reader, opts ...Option) (*Sensor, error) {
	switch source {
	case "":
		return New(nil, opts...), nil
	case StdinSource:
		return New(stdin, opts...), nil
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open sample source: %w", err)
	}

	return New(file, opts...), nil
}

func (s *Sensor) Capability() ports.SensorCapability {
	return ports.SensorCapability{Available: s.source != nil}
}

func (s *Sensor) RequestPermission(ctx context.Context) (ports.PermissionState, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return ports.PermissionGranted, nil
}

func (s *Sensor) Subscribe(handler func(domain.MotionSample)) (ports.Subscription, error) {
	if s.source == nil {
		return nil, domain.ErrCapabilityMissing
	}
	if handler == nil {
		return nil, errors.New("sample handler is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.handlers[id] = handler

	if !s.started {
		s.started = true
		go s.pump()
	}

	return &subscription{sensor: s, id: id}, nil
}

// Done is closed once the source is exhausted or the sensor is closed.
func (s *Sensor) Done() <-chan struct{} {
	return s.done
}

// Err reports the read error that ended the stream, if any.
func (s *Sensor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Close stops the pump and closes the source when it is closable. It does
// not wait for the pump to observe the stop.
func (s *Sensor) Close() error {
	s.quitOnce.Do(func() { close(s.quit) })

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		s.finish(nil)
	}

	if closer, ok := s.source.(io.Closer); ok && s.source != os.Stdin {
		return closer.Close()
	}
	return nil
}

func (s *Sensor) pump() {
	var err error
	defer func() { s.finish(err) }()

	scanner := bufio.NewScanner(s.source)
	var previous int64
	first := true

	for scanner.Scan() {
		if s.stopped() {
			return
		}

		sample, parseErr := ParseLine(scanner.Text())
		if parseErr != nil {
			if !errors.Is(parseErr, errEmptyLine) {
				s.logger.Warnf("skip sample line: %v", parseErr)
			}
			continue
		}

		if s.pace && !first && sample.TimestampMs > previous {
			if !s.sleep(time.Duration(sample.TimestampMs-previous) * time.Millisecond) {
				return
			}
		}
		first = false
		previous = sample.TimestampMs

		s.deliver(sample)
	}

	err = scanner.Err()
}

func (s *Sensor) deliver(sample domain.MotionSample) {
	s.mu.Lock()
	handlers := make([]func(domain.MotionSample), 0, len(s.handlers))
	for _, handler := range s.handlers {
		handlers = append(handlers, handler)
	}
	s.mu.Unlock()

	for _, handler := range handlers {
		handler(sample)
	}
}

func (s *Sensor) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.quit:
		return false
	}
}

func (s *Sensor) stopped() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

func (s *Sensor) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
		return
	default:
	}

	if err != nil {
		s.err = fmt.Errorf("read sample source: %w", err)
	}
	close(s.done)
}

type subscription struct {
	sensor *Sensor
	id     uint64
	once   sync.Once
}

// Unsubscribe never blocks on delivery; a sample already handed to the
// handler may still arrive after it returns.
func (sub *subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.sensor.mu.Lock()
		delete(sub.sensor.handlers, sub.id)
		sub.sensor.mu.Unlock()
	})
}

package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/stride/internal/domain"
	"github.com/bnema/stride/internal/ports"
)

const DefaultHistoryKey = "stepHistory"

type HistoryService struct {
	store    ports.KeyValueStore
	clock    ports.Clock
	key      string
	renderer HistoryRenderer
	logger   ports.Logger
}

type HistoryOption func(*HistoryService)

func WithHistoryKey(key string) HistoryOption {
	return func(s *HistoryService) {
		if key != "" {
			s.key = key
		}
	}
}

func WithHistoryRenderer(renderer HistoryRenderer) HistoryOption {
	return func(s *HistoryService) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

func WithHistoryLogger(logger ports.Logger) HistoryOption {
	return func(s *HistoryService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewHistoryService(store ports.KeyValueStore, clock ports.Clock, opts ...HistoryOption) *HistoryService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	s := &HistoryService{
		store:    store,
		clock:    clock,
		key:      DefaultHistoryKey,
		renderer: nopPresenter{},
		logger:   ports.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetRenderer swaps the renderer notified after every save. Used when the
// presentation layer is created after the service.
func (s *HistoryService) SetRenderer(renderer HistoryRenderer) {
	if renderer == nil {
		renderer = nopPresenter{}
	}
	s.renderer = renderer
}

// Load always reads from storage. Absent, unreadable or corrupt values yield
// an empty log.
func (s *HistoryService) Load(ctx context.Context) domain.HistoryLog {
	raw, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Warnf("read history %q: %v", s.key, err)
		}
		return domain.HistoryLog{}
	}

	if raw == "" {
		return domain.HistoryLog{}
	}

	var log domain.HistoryLog
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		s.logger.Warnf("decode history %q, treating as empty: %v", s.key, err)
		return domain.HistoryLog{}
	}
	if log == nil {
		return domain.HistoryLog{}
	}

	return log
}

func (s *HistoryService) Save(ctx context.Context, date string, steps uint) error {
	log := s.Load(ctx).Record(date, steps)

	encoded, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := s.store.Put(ctx, s.key, string(encoded)); err != nil {
		return fmt.Errorf("persist history: %w: %w", domain.ErrStorageUnavailable, err)
	}

	s.logger.Debugf("saved %d steps for %s (%d entries)", steps, date, len(log))
	s.renderer.RenderHistory(s.Load(ctx))

	return nil
}

func (s *HistoryService) SaveToday(ctx context.Context, steps uint) error {
	return s.Save(ctx, s.Today(), steps)
}

func (s *HistoryService) Render(ctx context.Context) {
	s.renderer.RenderHistory(s.Load(ctx))
}

func (s *HistoryService) Today() string {
	return domain.DateOf(s.clock.Now())
}

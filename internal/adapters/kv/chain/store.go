package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/stride/internal/domain"
	"github.com/bnema/stride/internal/ports"
)

// Store writes to primary and falls back to a second backend when primary
// fails, so a broken disk degrades history to in-memory instead of failing
// the session. Keys written to the fallback are read from the fallback first
// until primary accepts a write for them again.
type Store struct {
	primary  ports.KeyValueStore
	fallback ports.KeyValueStore
	logger   ports.Logger

	mu    sync.Mutex
	dirty map[string]struct{}
}

var _ ports.KeyValueStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary storage backend is nil")
	errNilFallbackStore = errors.New("fallback storage backend is nil")
)

func NewStore(primary ports.KeyValueStore, fallback ports.KeyValueStore, logger ports.Logger) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}

	return &Store{primary: primary, fallback: fallback, logger: logger, dirty: map[string]struct{}{}}, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		s.markClean(key)
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	s.logger.Warnf("primary put %q failed, using fallback: %v", key, err)
	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		s.markDirty(key)
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

// Get prefers primary, except for keys whose latest write only reached the
// fallback. A value only present in the fallback is still returned.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if s.isDirty(key) {
		value, err := s.fallback.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldSkipFallback(err) {
			return "", err
		}
		s.logger.Warnf("fallback get %q failed, trying primary: %v", key, err)
	}

	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}
	if errors.Is(err, domain.ErrKeyNotFound) && errors.Is(fallbackErr, domain.ErrKeyNotFound) {
		return "", domain.ErrKeyNotFound
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	if fallbackErr == nil {
		s.markClean(key)
	}
	if err == nil && fallbackErr == nil {
		return nil
	}
	if err == nil {
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	}
	if fallbackErr == nil {
		return fmt.Errorf("primary backend delete failed: %w", err)
	}

	return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
}

func (s *Store) markDirty(key string) {
	s.mu.Lock()
	s.dirty[key] = struct{}{}
	s.mu.Unlock()
}

func (s *Store) markClean(key string) {
	s.mu.Lock()
	delete(s.dirty, key)
	s.mu.Unlock()
}

func (s *Store) isDirty(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dirty[key]
	return ok
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

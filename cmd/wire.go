package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bnema/stride/internal/adapters/kv/chain"
	"github.com/bnema/stride/internal/adapters/kv/memory"
	"github.com/bnema/stride/internal/adapters/kv/sqlite"
	tomlkv "github.com/bnema/stride/internal/adapters/kv/toml"
	historyrender "github.com/bnema/stride/internal/adapters/render/history"
	"github.com/bnema/stride/internal/adapters/sensor/gate"
	"github.com/bnema/stride/internal/adapters/sensor/stream"
	"github.com/bnema/stride/internal/application"
	"github.com/bnema/stride/internal/config"
	"github.com/bnema/stride/internal/logging"
	"github.com/bnema/stride/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	cfg     config.Config
	logger  *logging.Logger
	store   ports.KeyValueStore
	history *application.HistoryService
	stdin   io.Reader
	closers []io.Closer
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Dir, "stride")
	if err != nil {
		logger.Warnf("logging to stderr: %v", err)
	}

	store, storeCloser, err := wireStore(cfg, logger.With("storage"))
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("wire storage: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		history: application.NewHistoryService(store, ports.SystemClock{},
			application.WithHistoryKey(cfg.History.Key),
			application.WithHistoryLogger(logger.With("history")),
		),
		stdin: os.Stdin,
	}
	if storeCloser != nil {
		a.closers = append(a.closers, storeCloser)
	}
	a.closers = append(a.closers, logger)

	return a, nil
}

// wireStore opens the configured backend. With memory_fallback enabled a
// backend that cannot be opened, or that fails later, degrades to process
// memory instead of failing the session.
func wireStore(cfg config.Config, logger ports.Logger) (ports.KeyValueStore, io.Closer, error) {
	var (
		primary ports.KeyValueStore
		closer  io.Closer
		err     error
	)

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		var db *sqlite.Store
		db, err = sqlite.Open(cfg.Storage.Path)
		if err == nil {
			primary, closer = db, db
		}
	default:
		var file *tomlkv.Store
		file, err = tomlkv.NewStore(cfg.Storage.Path)
		if err == nil {
			primary = file
		}
	}

	if err != nil {
		if !cfg.Storage.MemoryFallback {
			return nil, nil, err
		}
		logger.Warnf("storage %s unavailable, keeping history in memory: %v", cfg.Storage.Backend, err)
		return memory.NewStore(), nil, nil
	}

	if !cfg.Storage.MemoryFallback {
		return primary, closer, nil
	}

	store, err := chain.NewStore(primary, memory.NewStore(), logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, err
	}

	return store, closer, nil
}

// openSensor resolves source into a stream sensor, gated behind prompt when
// the configuration asks for an explicit permission step.
func (a *app) openSensor(source string, pace bool, prompt gate.Prompter) (ports.MotionSensor, *stream.Sensor, error) {
	raw, err := stream.Open(source, a.stdin,
		stream.WithPacing(pace),
		stream.WithLogger(a.logger.With("sensor")),
	)
	if err != nil {
		return nil, nil, err
	}

	if !a.cfg.Sensor.RequirePermission {
		return raw, raw, nil
	}

	gated, err := gate.New(raw, prompt)
	if err != nil {
		_ = raw.Close()
		return nil, nil, err
	}

	return gated, raw, nil
}

func (a *app) renderOptions() historyrender.RenderOptions {
	return historyrender.RenderOptions{
		Locale: historyrender.ParseLocale(a.cfg.Display.Locale),
		Today:  a.history.Today(),
	}
}

func (a *app) Close() error {
	var errs []error
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}

package shell

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/bnema/stride/internal/ports"
)

// Worker serves the app shell cache-first once it has been installed and
// activated. Until then every request goes to the origin.
type Worker struct {
	manifest *Manifest
	storage  *Storage
	origin   Origin
	logger   ports.Logger

	cache  atomic.Pointer[Cache]
	active atomic.Bool
}

func NewWorker(manifest *Manifest, storage *Storage, origin Origin, logger ports.Logger) (*Worker, error) {
	if manifest == nil {
		return nil, errors.New("shell manifest is nil")
	}
	if storage == nil {
		return nil, errors.New("shell storage is nil")
	}
	if origin == nil {
		return nil, errors.New("shell origin is nil")
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}

	return &Worker{manifest: manifest, storage: storage, origin: origin, logger: logger}, nil
}

func (w *Worker) CacheName() string {
	return w.manifest.CacheName()
}

// InstallProgress reports how far an install has got. Asset is the path that
// was just cached.
type InstallProgress struct {
	Asset  string
	Cached int
	Total  int
}

// Install pre-caches every literal asset. Any failure removes the partially
// filled cache.
func (w *Worker) Install(ctx context.Context) error {
	return w.InstallWithProgress(ctx, nil)
}

// InstallWithProgress is Install, calling report after each cached asset.
func (w *Worker) InstallWithProgress(ctx context.Context, report func(InstallProgress)) error {
	name := w.manifest.CacheName()

	cache, err := w.storage.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("install shell cache: %w", err)
	}

	assets := w.manifest.Precache()
	w.logger.Infof("pre-caching %d shell assets into %s", len(assets), name)
	for i, assetPath := range assets {
		resp, err := w.origin.Fetch(ctx, assetPath)
		if err == nil {
			err = cache.Put(ctx, resp)
		}
		if err != nil {
			cleanupErr := w.storage.Delete(context.WithoutCancel(ctx), name)
			return errors.Join(fmt.Errorf("install shell cache: %w", err), cleanupErr)
		}
		if report != nil {
			report(InstallProgress{Asset: assetPath, Cached: i + 1, Total: len(assets)})
		}
	}

	w.cache.Store(cache)
	return nil
}

// Activate removes every other cache and starts intercepting requests.
func (w *Worker) Activate(ctx context.Context) error {
	if w.cache.Load() == nil {
		return errors.New("activate shell cache: not installed")
	}

	names, err := w.storage.Names(ctx)
	if err != nil {
		return fmt.Errorf("activate shell cache: %w", err)
	}

	current := w.manifest.CacheName()
	var errs []error
	for _, name := range names {
		if name == current {
			continue
		}
		w.logger.Infof("removing old cache %s", name)
		if err := w.storage.Delete(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}

	w.active.Store(true)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("activate shell cache: %w", err)
	}
	return nil
}

func (w *Worker) Active() bool {
	return w.active.Load()
}

func (w *Worker) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	cache := w.cache.Load()
	if !w.active.Load() || cache == nil || !w.intercepts(r) {
		w.origin.ServeHTTP(rw, r)
		return
	}

	resp, ok, err := cache.Match(r.Context(), r.URL.Path)
	if err != nil {
		w.logger.Warnf("cache lookup %s: %v", r.URL.Path, err)
	}
	if !ok {
		w.origin.ServeHTTP(rw, r)
		return
	}

	if resp.ContentType != "" {
		rw.Header().Set("Content-Type", resp.ContentType)
	}
	rw.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	rw.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = rw.Write(resp.Body)
	}
}

func (w *Worker) intercepts(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	return isNavigation(r) || w.manifest.Matches(r.URL.Path)
}

func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

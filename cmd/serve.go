package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bnema/stride/internal/ports"
	"github.com/bnema/stride/internal/shell"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *app) *cobra.Command {
	var (
		listen      string
		manifest    string
		origin      string
		installOnly bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web app shell with an offline cache",
		Long:  "Pre-cache the assets listed in the shell manifest, drop caches from older manifests and serve the app shell cache-first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if listen == "" {
				listen = app.cfg.Serve.Listen
			}
			if manifest == "" {
				manifest = app.cfg.Shell.Manifest
			}
			if origin == "" {
				origin = app.cfg.Shell.Origin
			}

			worker, err := newShellWorker(app, manifest, origin)
			if err != nil {
				return err
			}

			cached, err := runInstallProgress(ctx, cmd.ErrOrStderr(), worker.CacheName(), worker.InstallWithProgress)
			if err != nil {
				return err
			}
			if err := worker.Activate(ctx); err != nil {
				return err
			}

			if installOnly {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "installed %s (%d assets)\n", worker.CacheName(), cached)
				return err
			}

			srv := &http.Server{
				Addr:              listen,
				Handler:           newServeRouter(worker, app.logger.With("http")),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			app.logger.Infof("serving %s on %s", worker.CacheName(), listen)
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s\n", worker.CacheName(), listen); err != nil {
				return err
			}

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve app shell: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default: serve.listen)")
	cmd.Flags().StringVar(&manifest, "manifest", "", "shell manifest YAML (default: shell.manifest)")
	cmd.Flags().StringVar(&origin, "origin", "", "asset origin: directory or http(s) URL (default: shell.origin)")
	cmd.Flags().BoolVar(&installOnly, "install-only", false, "install and activate the cache, then exit")

	return cmd
}

func newShellWorker(app *app, manifestPath, origin string) (*shell.Worker, error) {
	manifest, err := shell.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	network, err := shell.NewOrigin(origin, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, err
	}

	return shell.NewWorker(manifest, shell.NewStorage(app.cfg.Shell.CacheDir), network, app.logger.With("shell"))
}

// newServeRouter mounts worker behind request logging to logger.
func newServeRouter(worker http.Handler, logger ports.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.New(requestLogWriter{logger: logger}, "", 0),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/*", worker)

	return r
}

// requestLogWriter turns each line chi's formatter writes into an INFO entry.
type requestLogWriter struct {
	logger ports.Logger
}

func (w requestLogWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.logger.Infof("%s", line)
		}
	}
	return len(p), nil
}

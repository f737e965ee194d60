// Package internal provides the preview server initialization and
// runtime logic.
package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/jera/internal/api"
	"github.com/starford/jera/internal/build"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/preview"
	"github.com/starford/jera/internal/sse"
	"github.com/starford/jera/internal/watcher"
)

// Run starts the preview server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{root: "."}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	builder := build.New(cfg, app.root, logger)
	builder.IncludeDrafts = app.drafts

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.Serve.Address()),
		slog.String("source", builder.SourceDir()),
		slog.String("output", builder.OutputDir()),
		slog.String("log_level", cfg.LogLevel.String()))

	// Initialize SQLite index when search is on.
	var db *index.DB
	if cfg.Search.Enabled {
		var err error
		db, err = index.Open(filepath.Join(app.root, cfg.Search.DBPath))
		if err != nil {
			return fmt.Errorf("init index: %w", err)
		}
		defer db.Close()
	}

	// SSE broker for build events and live reload.
	broker := sse.NewBroker(200 * time.Millisecond)
	defer broker.Close()

	svc := preview.NewService(builder, db, broker, logger)

	// Initial build. The server keeps running on a failed build so the
	// author can fix the source and let the watcher retry.
	if rep, err := svc.Rebuild(ctx, "startup"); err != nil {
		logger.Error("initial build failed", slog.String("error", err.Error()))
	} else if rep.Failed() {
		logger.Warn("initial build finished with errors", slog.Int("errors", len(rep.Errors)))
	}

	apiRouter := api.NewRouter(svc, cfg.Serve.Auth.AuthEnabled(), cfg.Serve.Auth.Token)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// SSE endpoint. It sits outside the auth group because EventSource
	// cannot send Authorization headers.
	r.Get("/api/events", broker.ServeHTTP)

	// The built site itself, with live reload injection.
	r.Handle("/*", siteHandler(builder.OutputDir(), cfg.Serve.LiveReload))

	httpServer := &http.Server{
		Addr:    cfg.Serve.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.Serve.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher that rebuilds on source changes.
	if cfg.Serve.Watch {
		g.Go(func() error {
			watchOpts := watcher.Options{Ignore: []string{cfg.Output}}
			return watcher.Watch(gCtx, builder.SourceDir(), watchOpts, logger, func(paths []string) {
				logger.Info("source changed", slog.Int("files", len(paths)))
				if _, err := svc.Rebuild(gCtx, "watch"); err != nil {
					logger.Error("rebuild failed", slog.String("error", err.Error()))
				}
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.Serve.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

const reloadScript = `<script>
(function () {
  var es = new EventSource("/api/events");
  es.addEventListener("reload", function () { location.reload(); });
})();
</script>
`

// injectReload splices the live reload client in front of the closing
// body tag, or appends it when the page has none.
func injectReload(page []byte) []byte {
	if i := bytes.LastIndex(page, []byte("</body>")); i >= 0 {
		var b bytes.Buffer
		b.Grow(len(page) + len(reloadScript))
		b.Write(page[:i])
		b.WriteString(reloadScript)
		b.Write(page[i:])
		return b.Bytes()
	}
	return append(page, reloadScript...)
}

// siteHandler serves the built site. HTML responses get the live
// reload client injected; nothing is ever browser-cached.
func siteHandler(dir string, livereload bool) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		if livereload {
			p := path.Clean("/" + r.URL.Path)
			if strings.HasSuffix(r.URL.Path, "/") {
				p = path.Join(p, "index.html")
			}
			if path.Ext(p) == ".html" {
				data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(p, "/"))))
				if err == nil {
					w.Header().Set("Content-Type", "text/html; charset=utf-8")
					_, _ = w.Write(injectReload(data))
					return
				}
			}
		}
		fileServer.ServeHTTP(w, r)
	})
}

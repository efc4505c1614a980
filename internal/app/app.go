// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/statusgarden/sandbox/internal/components"
	"github.com/statusgarden/sandbox/internal/config"
	"github.com/statusgarden/sandbox/internal/demo"
	"github.com/statusgarden/sandbox/internal/incidents"
	"github.com/statusgarden/sandbox/internal/pkg/httputil"
	"github.com/statusgarden/sandbox/internal/store"
	"github.com/statusgarden/sandbox/internal/templates"
	"github.com/statusgarden/sandbox/internal/upstream"
	"github.com/statusgarden/sandbox/internal/version"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	store         *store.Store
	tracker       *demo.Tracker
	sweeper       *demo.Sweeper
	sweepWorker   *demo.Worker
	server        *http.Server
	metricsServer *http.Server
	workerCancel  context.CancelFunc
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	st := store.New(cfg.Store.StatePath)
	tracker := demo.NewTracker(cfg.Store.TrackerPath, cfg.Demo.Enabled)

	live := upstream.NewClient(upstream.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		PageID:    cfg.Upstream.PageID,
		Token:     cfg.Upstream.Token,
		Timeout:   cfg.Upstream.Timeout,
		DeleteRPS: cfg.Upstream.DeleteRPS,
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())

	app := &App{
		config:       cfg,
		logger:       logger,
		store:        st,
		tracker:      tracker,
		sweeper:      demo.NewSweeper(tracker, live),
		workerCancel: workerCancel,
	}

	if cfg.Demo.Enabled && cfg.Demo.CleanupInterval > 0 {
		app.sweepWorker = demo.NewWorker(app.sweeper, cfg.Demo.CleanupInterval)
		app.sweepWorker.Start(workerCtx)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(live),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
		"demo_mode", a.config.Demo.Enabled,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.workerCancel()
	if a.sweepWorker != nil {
		a.sweepWorker.Stop()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// Sweeper returns the cleanup sweeper. Used in tests.
func (a *App) Sweeper() *demo.Sweeper {
	return a.sweeper
}

func (a *App) setupRouter(live *upstream.Client) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	componentsService := components.NewService(a.store, a.tracker, live)
	componentsHandler := components.NewHandler(componentsService)

	incidentsService := incidents.NewService(a.store, a.tracker)
	incidentsHandler := incidents.NewHandler(incidentsService)

	templatesService := templates.NewService(a.store, a.tracker)
	templatesHandler := templates.NewHandler(templatesService)

	demoHandler := demo.NewHandler(a.tracker, a.sweeper)

	r.Route("/api/v1", func(r chi.Router) {
		componentsHandler.RegisterRoutes(r)
		incidentsHandler.RegisterRoutes(r)
		templatesHandler.RegisterRoutes(r)
		demoHandler.RegisterRoutes(r)
	})

	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, _ *http.Request) {
	// The state document is lazy-created; readiness only needs its
	// directory to be writable.
	dir := filepath.Dir(a.store.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		a.logger.Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "State directory unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

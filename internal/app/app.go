// Package app wires configuration, services, transport and the HTTP server
// into a runnable dashboard application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"edupulse/internal/config"
	"edupulse/internal/errors"
	"edupulse/internal/infrastructure"
	"edupulse/internal/metrics"
	customMiddleware "edupulse/internal/middleware"
	"edupulse/internal/services"
	handlers "edupulse/internal/transport/http"
	ws "edupulse/internal/websocket"
)

const (
	// Version is the reported application version.
	Version = "1.2.0"
	// AppName is the human-readable application name.
	AppName = "EduPulse - Student Performance Dashboard"
)

// Application is the dependency container of the web server.
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Router *chi.Mux
	Server *http.Server

	WebSocketHub     *ws.Hub
	DataService      *services.DataService
	HealthService    *services.HealthService
	OperationService *services.OperationService
	Metrics          *metrics.Metrics

	Logger *slog.Logger
}

// NewApplication loads configuration and assembles every service.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	app := &Application{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service graph in dependency order.
func (a *Application) initializeServices() error {
	a.Metrics = metrics.New()

	hub := ws.NewHub(a.Logger)
	hub.SetConnectionGauge(a.Metrics.WSConnections)
	a.WebSocketHub = hub

	a.DataService = services.NewDataService(a.Paths, a.Config.Rules, a.Logger, a.Metrics)

	// A missing dataset is not fatal at startup; the dashboard starts in
	// its empty state and the pipeline stage fills it in.
	if config.FileExists(a.Paths.CleanedMasterCSV) {
		if err := a.DataService.Load(context.Background()); err != nil {
			a.Logger.Warn("could not load existing dataset",
				slog.String("path", a.Paths.CleanedMasterCSV),
				slog.String("error", err.Error()))
		}
	} else {
		a.Logger.Warn("cleaned dataset not found, starting empty",
			slog.String("path", a.Paths.CleanedMasterCSV))
	}

	a.HealthService = services.NewHealthService(a.Paths, a.DataService, Version)
	a.OperationService = services.NewOperationService(
		a.Config, a.Paths, a.DataService, hub, a.Metrics, a.Logger)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that won't interfere with the WebSocket upgrade.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := handlers.NewWebSocketHandler(a.WebSocketHub, a.Logger)
	r.HandleFunc("/ws", wsHandler.ServeHTTP)

	// Prometheus scrape endpoint stays outside the full middleware group.
	r.Handle("/metrics", a.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Instrument(a.Metrics))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins:   a.Config.Security.AllowedOrigins,
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: true,
				Logger:           a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupStaticRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, false)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Mount("/health", healthHandler.Routes())

			r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
				render.JSON(w, r, map[string]string{
					"name":    AppName,
					"version": Version,
				})
			})

			dashboardHandler := handlers.NewDashboardHandler(a.DataService, a.Logger, errorHandler)
			r.Mount("/dashboard", dashboardHandler.Routes())
		})

		// Stage runs need more time than regular API calls.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout*10, a.Logger))

			operationsHandler := handlers.NewOperationsHandler(a.OperationService, a.Logger, errorHandler)
			r.Mount("/operations", operationsHandler.Routes())
		})
	})
}

// setupStaticRoutes serves the dashboard page and the EDA artifacts.
func (a *Application) setupStaticRoutes(r chi.Router) {
	r.Route("/visualizations", func(r chi.Router) {
		r.Use(customMiddleware.Compress(5))
		r.Handle("/*", http.StripPrefix("/visualizations",
			http.FileServer(http.Dir(a.Paths.VisualizationsDir))))
	})

	r.Route("/reports", func(r chi.Router) {
		r.Handle("/*", http.StripPrefix("/reports",
			http.FileServer(http.Dir(a.Paths.ReportsDir))))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(a.Paths.WebDir, "index.html"))
	})
	r.Route("/static", func(r chi.Router) {
		r.Use(customMiddleware.Compress(5))
		r.Handle("/*", http.StripPrefix("/static",
			http.FileServer(http.Dir(filepath.Join(a.Paths.WebDir, "static")))))
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run starts the server and blocks until a shutdown signal arrives or the
// server fails.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.WebSocketHub.Start()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening",
			slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop()
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop() error {
	a.Logger.Info("shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.WebSocketHub.Stop()
	infrastructure.CloseLogFile()

	a.Logger.Info("application stopped")
	return nil
}

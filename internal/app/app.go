package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"csvhealth/internal/config"
	apierrors "csvhealth/internal/errors"
	"csvhealth/internal/infrastructure"
	custommiddleware "csvhealth/internal/middleware"
	"csvhealth/internal/operations"
	"csvhealth/internal/services"
	handlers "csvhealth/internal/transport/http"
	ws "csvhealth/internal/websocket"
)

const (
	Version = "1.0.0"
	AppName = "csvhealth"
)

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Hub            *ws.Hub
	Manager        *operations.Manager
	CleanseService *services.CleanseService
	HealthService  *services.HealthService
	Observability  *infrastructure.Observability
	Metrics        *infrastructure.PipelineMetrics
	Logger         *slog.Logger
}

// NewApplication creates a new application instance from the environment
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger)
}

// NewApplicationWithConfig wires an application around an existing
// configuration and logger
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	obs, err := infrastructure.InitializeObservability(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	metrics, err := infrastructure.NewPipelineMetrics(obs.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Observability: obs,
		Metrics:       metrics,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the hub, pipeline manager, and services
func (a *Application) initializeServices() {
	a.Hub = ws.NewHub(a.Logger)

	a.Manager = operations.NewManager(a.Logger,
		operations.WithEventSink(a.Hub),
		operations.WithMetrics(a.Metrics))

	a.CleanseService = services.NewCleanseService(a.Manager, a.Config, a.Logger)
	a.HealthService = services.NewHealthService(Version, a.CleanseService, a.Hub, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.RealIP)

	// WebSocket route stays outside the full middleware group so the
	// hijacked connection is never wrapped.
	wsHandler := handlers.NewWebSocketHandler(
		a.Hub,
		a.Config.Security.AllowedOrigins,
		a.Config.WebSocket.ReadBufferSize,
		a.Config.WebSocket.WriteBufferSize,
		a.Logger,
	)
	r.Handle("/ws", wsHandler)

	// Metrics scrape endpoint, also outside the group
	r.Handle("/metrics", a.Observability.PrometheusHTTP)

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.Metrics(a.Metrics))
		r.Use(custommiddleware.StructuredLogger(a.Logger))
		r.Use(custommiddleware.Recoverer(a.Logger))
		r.Use(custommiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(custommiddleware.CORS(a.corsConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		errorHandler := apierrors.NewErrorHandler(a.Logger, false)

		r.Route("/api", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(a.Config.Server.RunTimeout))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Mount("/health", healthHandler.Routes())

			cleanseHandler := handlers.NewCleanseHandler(
				a.CleanseService,
				a.Config.Limits.MaxUploadBytes,
				a.Logger,
				errorHandler,
			)
			r.Mount("/", cleanseHandler.Routes())
		})

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	})

	a.Router = r
}

func (a *Application) corsConfig() custommiddleware.CORSConfig {
	return custommiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub and the HTTP server
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Config.DataDir()))

	a.Hub.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Hub.Stop()

	if a.Observability != nil {
		if err := a.Observability.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down observability",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

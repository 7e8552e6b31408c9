package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/giuliam-97/Stress-Test/internal/config"
	"github.com/giuliam-97/Stress-Test/internal/dataprocessing"
	apierrors "github.com/giuliam-97/Stress-Test/internal/errors"
	"github.com/giuliam-97/Stress-Test/internal/exporter"
	"github.com/giuliam-97/Stress-Test/internal/infrastructure"
	customMiddleware "github.com/giuliam-97/Stress-Test/internal/middleware"
	"github.com/giuliam-97/Stress-Test/internal/services"
	handlers "github.com/giuliam-97/Stress-Test/internal/transport/http"
	"github.com/giuliam-97/Stress-Test/pkg/contracts"
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// AppName is reported in startup logs
const AppName = "Stress PnL Dashboard"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Workbooks     *services.WorkbookService
	Health        *services.HealthService
}

// NewApplication loads the configuration and the global logger, then wires
// the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development, handlers.ProblemRules()...),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the ingestion pipeline and the services on top of it
func (a *Application) initializeServices() error {
	loader := dataprocessing.NewLoader(a.Logger)
	cache := dataprocessing.NewCache(loader, a.Config.Ingest.CacheCapacity, a.Logger)
	files := exporter.NewFileWriter(a.Paths, a.Logger)

	workbooks, err := services.NewWorkbookService(cache, services.WorkbookOptions{
		DefaultMode:   domain.IngestMode(a.Config.Ingest.DefaultMode),
		DetailColumns: a.Config.Ingest.DetailColumns,
		StrictLayout:  a.Config.Ingest.StrictLayout,
	}, files, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize workbook service: %w", err)
	}
	a.Workbooks = workbooks
	a.Health = services.NewHealthService(contracts.Version, contracts.BuildTime, workbooks, a.Logger)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// RequestID → RealIP → OTel → error logging/recovery → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	r.Use(customMiddleware.SecurityHeaders)

	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	workbookHandler := handlers.NewWorkbookHandler(a.Workbooks, a.Config.Server.MaxUploadBytes, a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)
		r.Mount("/workbooks", workbookHandler.Routes())
	})

	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.Router = r
}

// getCORSConfig returns the CORS configuration for the configured origins
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
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

// LoadStartupWorkbook ingests the configured workbook path, if any. A
// relative path is resolved under the data directory. A failure is logged
// and the server keeps running without it.
func (a *Application) LoadStartupWorkbook(ctx context.Context) {
	if a.Config.Ingest.WorkbookPath == "" {
		return
	}
	path := a.Paths.GetDataPath(a.Config.Ingest.WorkbookPath)
	ctx = infrastructure.EnsureTraceID(ctx)

	summary, err := a.Workbooks.IngestPath(ctx, path, "")
	if err != nil {
		infrastructure.WithError(a.Logger, err).WarnContext(ctx, "Startup workbook could not be loaded",
			slog.String("path", path))
		return
	}

	a.Logger.InfoContext(ctx, "Startup workbook loaded",
		slog.String("workbook_id", summary.ID),
		slog.Int("rows", summary.Rows),
		slog.Int("sheets_skipped", len(summary.SheetsSkipped)))
}

// Start loads the startup workbook and serves HTTP in the background.
// cancel is called if the listener fails.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.LoadStartupWorkbook(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received interrupt signal")

	return a.Stop(context.Background())
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"bangreport/internal/config"
	apperrors "bangreport/internal/errors"
	"bangreport/internal/exporter"
	"bangreport/internal/infrastructure"
	customMiddleware "bangreport/internal/middleware"
	"bangreport/internal/operations"
	"bangreport/internal/services"
	handlers "bangreport/internal/transport/http"
	"bangreport/internal/validation"
	"bangreport/internal/websocket"
	"bangreport/pkg/contracts"
	"bangreport/pkg/contracts/events"
)

// AppName is the human readable application name
const AppName = "Bang Report"

// Application wires configuration, telemetry, the report pipeline and the
// HTTP server together
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Operations    *operations.Manager
	Services      *ServiceContainer
	Router        *chi.Mux
	Server        *http.Server
	Hub           *websocket.Hub

	pdf         operations.PDFPrinter
	listener    net.Listener
	stopWatcher context.CancelFunc
}

// ServiceContainer holds the services behind the HTTP handlers
type ServiceContainer struct {
	Report *services.ReportService
	Health *services.HealthService
}

// Option customizes an Application
type Option func(*Application)

// WithPDFPrinter replaces the headless Chrome printer
func WithPDFPrinter(p operations.PDFPrinter) Option {
	return func(a *Application) { a.pdf = p }
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("configuration is required", nil)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("team", cfg.Season.Team),
		slog.Int("year", cfg.Season.Year))

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(paths.OutputDir); err != nil {
		return nil, err
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices builds the pipeline and the read side services
func (a *Application) initializeServices() error {
	registry, err := operations.NewReportRegistry(operations.StageOptions{
		Config:  a.Config,
		Paths:   a.Paths,
		Metrics: a.Metrics,
		PDF:     a.pdf,
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Operations = operations.NewManager(
		registry,
		operations.NewConfig(),
		operations.NewOperationTracer(a.Metrics),
		a.Logger,
	)

	a.Services = &ServiceContainer{
		Report: services.NewReportService(a.Paths, a.Logger),
		Health: services.NewHealthService(a.Paths, a.Logger),
	}
	a.Hub = websocket.NewHub(a.Logger)
	return nil
}

// RunPipeline runs the report pipeline once. Runs that start with the load
// step first check the whole input layout so every missing file is reported
// together.
func (a *Application) RunPipeline(ctx context.Context, req operations.OperationRequest) (*operations.OperationResponse, error) {
	ctx = infrastructure.EnsureTraceID(ctx)

	if req.Step == "" || req.Step == operations.StepIDLoad {
		if err := validation.NewFileValidator(a.Logger).ValidateInputLayout(a.Paths); err != nil {
			a.Logger.ErrorContext(ctx, "input validation failed", slog.String("error", err.Error()))
			return nil, err
		}
	}

	return a.Operations.Execute(ctx, req)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, false)

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.Config.Server.AllowedOrigins))

	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	reportHandler := handlers.NewReportHandler(a.Services.Report, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Get("/", reportHandler.ServeReport)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.Timeout(a.Config.Server.ReadTimeout))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)
		reportHandler.RegisterRoutes(r)
	})

	var promHandler http.Handler
	if a.OTelProviders.MeterProvider != nil {
		promHandler = a.OTelProviders.PrometheusHTTP
	}
	r.Handle("/metrics", handlers.NewMetricsHandler(promHandler, errorHandler))
	r.Get("/ws", websocket.Handler(a.Hub, a.Config.Server.AllowedOrigins, a.Logger))

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Start binds the listener and serves in the background. A serve failure
// calls cancel so Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	if !config.FileExists(a.Paths.ReportJSON) {
		a.Logger.WarnContext(ctx, "No report generated yet, API will return 404 until `bangreport run` completes",
			slog.String("output_dir", a.Paths.OutputDir))
	}

	a.Hub.Start()
	watchCtx, stopWatcher := context.WithCancel(context.WithoutCancel(ctx))
	a.stopWatcher = stopWatcher
	if _, err := a.Services.Report.Watch(watchCtx, a.Config.Server.WatchInterval, func(m exporter.Metadata) {
		a.broadcastReport(watchCtx, m)
	}); err != nil {
		a.Logger.WarnContext(ctx, "Report watcher unavailable, clients will not be notified of new reports",
			slog.String("error", err.Error()))
	}

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", "http://"+ln.Addr().String()))
	return nil
}

// broadcastReport pushes a report:updated message to websocket clients
func (a *Application) broadcastReport(ctx context.Context, m exporter.Metadata) {
	a.Logger.InfoContext(ctx, "New report detected",
		slog.Time("generated_at", m.GeneratedAt),
		slog.Int("clients", a.Hub.ClientCount()))
	if err := a.Hub.Broadcast(ctx, events.MessageTypeReportUpdated, events.ReportUpdated{
		Team:        m.Team,
		Year:        m.Year,
		GeneratedAt: m.GeneratedAt,
		RowCounts:   m.RowCounts,
	}); err != nil {
		a.Logger.WarnContext(ctx, "Failed to broadcast report update",
			slog.String("error", err.Error()))
	}
}

// Addr returns the bound address once Start has succeeded
func (a *Application) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.stopWatcher != nil {
		a.stopWatcher()
	}
	// Close websocket clients first; Shutdown does not track hijacked connections
	a.Hub.Stop()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Shutdown(shutdownCtx)

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Shutdown flushes telemetry providers. Stop calls it; one-shot pipeline
// runs call it directly.
func (a *Application) Shutdown(ctx context.Context) {
	if a.OTelProviders == nil {
		return
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
}

// Run serves until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

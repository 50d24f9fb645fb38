package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"doelab/internal/config"
	apierrors "doelab/internal/errors"
	"doelab/internal/infrastructure"
	customMiddleware "doelab/internal/middleware"
	"doelab/internal/services"
	"doelab/internal/synth"
	handlers "doelab/internal/transport/http"
	"doelab/pkg/contracts"
)

// runtimeStatsInterval is how often the runtime snapshot is logged
const runtimeStatsInterval = time.Minute

// Application represents the main application
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        chi.Router
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Runtime       *infrastructure.RuntimeMetrics

	// Services
	ErrorHandler      *apierrors.ErrorHandler
	Validator         *customMiddleware.ValidationMiddleware
	DesignService     *services.DesignService
	StatisticsService *services.StatisticsService
	SPCService        *services.SPCService
	SynthService      *services.SynthService
	HealthService     *services.HealthService

	// synthClient overrides the model client built from config
	synthClient synth.Client
}

// Option configures an Application before its services are built
type Option func(*Application)

// WithLogger replaces the global logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) { a.Logger = logger }
}

// WithSynthClient injects the model client used by the synthetic generator
func WithSynthClient(c synth.Client) Option {
	return func(a *Application) { a.synthClient = c }
}

// NewApplication loads configuration and creates a fully wired application
func NewApplication(opts ...Option) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewApplicationWithConfig(cfg, opts...)
}

// NewApplicationWithConfig creates a fully wired application from cfg
func NewApplicationWithConfig(cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &Application{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	if app.Logger == nil {
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.Logger = logger
	}

	app.Logger.Info("Configuration loaded",
		slog.String("address", cfg.Server.Address()),
		slog.String("log_level", cfg.Logging.Level),
		slog.Bool("cors", cfg.Security.EnableCORS),
		slog.Bool("rate_limit", cfg.Security.RateLimit.Enabled))

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.OTelProviders = providers

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service layer and its collaborators
func (a *Application) initializeServices() error {
	var err error

	a.Metrics, err = infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}

	a.Runtime, err = infrastructure.NewRuntimeMetrics(a.OTelProviders.Meter, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development, handlers.ErrorMappings()...)
	a.Validator = customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler, a.Config.Analysis.MaxUploadBytes)

	analysis := a.Config.Analysis
	a.DesignService = services.NewDesignService(analysis.MaxDesignRuns, a.Metrics, a.Logger)
	a.StatisticsService = services.NewStatisticsService(analysis.MaxSampleSize, a.Metrics, a.Logger)
	a.SPCService = services.NewSPCService(analysis.MaxSampleSize, a.Metrics, a.Logger)

	gen, err := a.newGenerator()
	if err != nil {
		return err
	}
	a.SynthService = services.NewSynthService(gen, a.Metrics, a.Logger,
		services.WithForceMock(a.Config.Generator.ForceMock),
		services.WithBatchTimeout(a.Config.Generator.Timeout),
		services.WithMaxRows(analysis.MaxDesignRuns),
	)

	a.HealthService = services.NewHealthService(infrastructure.ServiceName, contracts.Version, a.Logger,
		services.WithBuildTime(contracts.BuildTime),
		services.WithRuntimeMetrics(a.Runtime),
		services.WithGeneratorStatus(a.SynthService.Live),
	)

	a.Logger.Info("Services initialized",
		slog.Bool("generator_live", a.SynthService.Live()),
		slog.Int("max_design_runs", analysis.MaxDesignRuns))
	return nil
}

// newGenerator picks the model client: an injected one, OpenAI when a key is
// configured, otherwise mock only
func (a *Application) newGenerator() (*synth.Generator, error) {
	gc := a.Config.Generator
	client := a.synthClient
	if client == nil && gc.APIKey != "" && !gc.ForceMock {
		oc, err := synth.NewOpenAIClient(gc.APIKey, gc.Model, gc.BaseURL, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
		client = oc
	}
	if client == nil {
		a.Logger.Warn("No model API key configured, synthetic data will be mocked")
	}

	return synth.NewGenerator(client,
		synth.WithWorkers(gc.Workers),
		synth.WithMockClient(synth.NewMockClient(uint64(time.Now().UnixNano()), gc.MockLatency)),
		synth.WithLogger(a.Logger),
	), nil
}

// setupRouter configures the HTTP router. Middleware order:
// RequestID, RealIP, OTel, Logger, Recoverer, SecurityHeaders, CORS, RateLimiter.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/", healthHandler.Root)

		a.setupAPIRoutes(r)

		// Un-prefixed paths kept for existing clients
		r.Group(func(r chi.Router) {
			a.useRequestMiddleware(r)
			a.setupEngineRoutes(r)
		})
	})

	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount(config.HealthEndpoint, healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Group(func(r chi.Router) {
			a.useRequestMiddleware(r)
			a.setupEngineRoutes(r)
		})
	})
}

// useRequestMiddleware applies body checks shared by every engine route
func (a *Application) useRequestMiddleware(r chi.Router) {
	r.Use(a.Validator.ValidateRequest)
	r.Use(customMiddleware.ContentTypeValidator(a.ErrorHandler, "application/json", "multipart/form-data"))
}

// setupEngineRoutes registers the design, statistics, SPC and generator
// endpoints on r. Generator calls get their own, longer deadline.
func (a *Application) setupEngineRoutes(r chi.Router) {
	designHandler := handlers.NewDesignHandler(a.DesignService, a.Validator, a.ErrorHandler, a.Logger)
	statsHandler := handlers.NewStatsHandler(a.StatisticsService, a.Validator, a.ErrorHandler, a.Logger)
	spcHandler := handlers.NewSPCHandler(a.SPCService, a.Validator, a.ErrorHandler, a.Config.Analysis.MaxUploadBytes, a.Logger)
	synthHandler := handlers.NewSynthHandler(a.SynthService, a.Validator, a.ErrorHandler, a.Logger)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Mount("/design", designHandler.Routes())
		r.Mount("/stats", statsHandler.Routes())
		r.Mount("/spc", spcHandler.Routes())
	})

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Generator.Timeout))
		r.Post("/generate", synthHandler.Generate)
		r.Post("/analysis", synthHandler.Analysis)
	})
}

// getCORSConfig builds the CORS policy from the security section
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}

	// Credentials are never combined with a wildcard origin
	cfg.AllowCredentials = true
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			cfg.AllowCredentials = false
			break
		}
	}

	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server and background collectors. A listen failure
// calls cancel so Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	go a.Runtime.Run(ctx, runtimeStatsInterval)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", a.Server.Addr),
		slog.Bool("generator_live", a.SynthService.Live()))
	return nil
}

// Stop gracefully shuts the application down
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
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

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Run starts the application and blocks until an interrupt signal arrives
// or the server fails
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
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/questiongen/internal/auth"
	"github.com/phrazzld/questiongen/internal/config"
	"github.com/phrazzld/questiongen/internal/events"
	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/phrazzld/questiongen/internal/materials"
	"github.com/phrazzld/questiongen/internal/platform/backend"
	"github.com/phrazzld/questiongen/internal/platform/cache"
	"github.com/phrazzld/questiongen/internal/platform/pdf"
	"github.com/phrazzld/questiongen/internal/platform/telemetry"
	"github.com/phrazzld/questiongen/internal/task"
)

// serviceName identifies the service in telemetry.
const serviceName = "questiongen"

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Generation
	generator   *generation.Service
	cache       *cache.Cache
	backendName string
	extractor   materials.Sniffing

	// Task handling
	store        *task.Store
	taskManager  *task.Manager
	eventEmitter *events.InMemoryEventEmitter

	// jwtService is nil when authentication is disabled.
	jwtService *auth.JWTService

	shutdownTelemetry telemetry.ShutdownFunc

	startedAt time.Time
}

// clientFactory builds the generation client. Tests replace it to avoid
// network backends.
type clientFactory func(ctx context.Context, cfg config.LLMConfig, l *slog.Logger) (generation.Client, string, error)

// newApplication creates a new application instance with all dependencies
// initialized. The task manager is not started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	return newApplicationWithClient(ctx, cfg, logger, backend.NewDecorated)
}

func newApplicationWithClient(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	newClient clientFactory,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		startedAt: time.Now(),
	}

	var err error
	app.shutdownTelemetry, err = telemetry.Setup(ctx, cfg.Telemetry, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	if cfg.Telemetry.Enabled {
		logger.Info("OpenTelemetry export enabled", "otlp_endpoint", cfg.Telemetry.OTLPEndpoint)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	switch {
	case errors.Is(err, auth.ErrDisabled):
		logger.Warn("JWT secret not configured, API authentication disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	default:
		logger.Info("JWT authentication enabled", "token_lifetime", cfg.Auth.TokenLifetime.String())
	}

	client, name, err := newClient(ctx, cfg.LLM, logger.With("component", "llm_client"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	app.backendName = name

	builder, err := generation.NewPromptBuilder(cfg.LLM.PromptTemplatePath, cfg.LLM.IncludeExplanation)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt template: %w", err)
	}

	var opts []generation.ServiceOption
	if cfg.Cache.Enabled && cfg.Cache.MaxCostBytes > 0 {
		app.cache, err = cache.New(cfg.Cache.MaxCostBytes, cfg.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		opts = append(opts, generation.WithCache(app.cache))
		logger.Info("generation result cache enabled",
			"max_cost_bytes", cfg.Cache.MaxCostBytes,
			"ttl", cfg.Cache.TTL.String())
	}
	app.generator = generation.NewService(client, builder, logger, opts...)

	app.extractor = materials.Sniffing{PDF: pdf.NewExtractor(pdf.DefaultMaxPages)}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create task metrics: %w", err)
	}
	app.eventEmitter.RegisterHandler(telemetry.NewMetricsHandler(metrics))

	app.store = task.NewStore()
	app.taskManager = task.NewManager(app.store, app.generator, task.ManagerConfig{
		WorkerCount:      cfg.Task.WorkerCount,
		QueueSize:        cfg.Task.QueueSize,
		DefaultListLimit: cfg.Task.DefaultListLimit,
	}, logger, task.WithEmitter(app.eventEmitter))

	logger.Info("Application initialized successfully",
		"backend", app.backendName,
		"model", app.generator.Model(),
		"workers", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)
	return app, nil
}

// cleanup handles graceful shutdown of application resources. In-flight
// tasks are abandoned when ctx expires.
func (app *application) cleanup(ctx context.Context) {
	if app.taskManager != nil {
		if err := app.taskManager.Shutdown(ctx); err != nil {
			app.logger.Error("task manager shutdown incomplete", "error", err)
		}
	}
	if app.cache != nil {
		app.cache.Close()
	}
	if app.shutdownTelemetry != nil {
		if err := app.shutdownTelemetry(ctx); err != nil {
			app.logger.Warn("telemetry flush failed", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}

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
	"github.com/go-chi/render"

	"retailbi/internal/config"
	"retailbi/internal/infrastructure"
	customMiddleware "retailbi/internal/middleware"
	"retailbi/internal/services"
	transport "retailbi/internal/transport/http"
)

// Version is set at build time via ldflags
var Version = "dev"

// Application wires the configuration, services and HTTP server together
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Router   chi.Router
	Server   *http.Server
	Pipeline *services.PipelineService
	Health   *services.HealthService
}

// NewApplication creates a fully wired application
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	app.Pipeline = services.NewPipelineService(
		cfg.Forecast.Horizon,
		cfg.Anomaly.ZThreshold,
		logger,
	)
	app.Health = services.NewHealthService(Version, "", app.Pipeline, logger)

	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
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
	})

	// Outside the middleware group so scrapes stay cheap.
	r.Handle("/metrics", transport.MetricsHandler())

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		transport.NewHealthHandler(a.Health, a.Logger).RegisterRoutes(r)
		transport.NewDataHandler(a.Pipeline, a.Logger).RegisterRoutes(r)
		transport.NewForecastHandler(a.Pipeline, a.Logger).RegisterRoutes(r)
		transport.NewAnomalyHandler(a.Pipeline, a.Logger).RegisterRoutes(r)
		transport.NewPipelineHandler(a.Pipeline, a.Config.Paths.InputFile, a.Logger).RegisterRoutes(r)
		transport.NewArtifactsHandler(a.Config.GetOutputDir(), a.Logger).RegisterRoutes(r)
	})
}

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

// Start begins serving HTTP requests until the context is cancelled
func (a *Application) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.Logger.InfoContext(ctx, "http server starting",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))

		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		return a.Stop(context.Background())
	}
}

// Stop gracefully shuts down the HTTP server
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "http server stopping")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.Warn("failed to close log file", slog.String("error", err.Error()))
	}

	return nil
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return a.Start(ctx)
}

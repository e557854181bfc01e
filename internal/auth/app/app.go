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
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/events"
	httpapi "github.com/aussiebroadwan/jwtauth/internal/auth/http"
	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	signer    *jwtx.HS256Signer
	verifier  *jwtx.HS256Verifier
	publisher events.Publisher
	registry  *prometheus.Registry
	telemetry *telemetry

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: cfg.Telemetry.ServiceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	signer, verifier, err := InitAuthKeys(cfg.Token, app.logger)
	if err != nil {
		return nil, err
	}
	app.signer, app.verifier = signer, verifier

	tel, err := setupTelemetry(ctx, cfg.Telemetry, BuildVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	app.telemetry = tel

	if err := app.initDatabase(ctx); err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	app.initEvents()
	if err := app.initServices(); err != nil {
		_ = app.publisher.Close()
		_ = tel.Shutdown(ctx)
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.server.Handler }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Flush pending events before the store goes away
	if err := app.publisher.Close(); err != nil {
		app.logger.Error("error closing event publisher", "error", err)
	}

	if err := app.telemetry.Shutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.Database.Driver {
	case "postgres":
		db, err = postgres.NewStore(ctx, postgres.Config{
			URL:             app.cfg.Database.URL,
			MaxConns:        app.cfg.Database.MaxConns,
			MinConns:        app.cfg.Database.MinConns,
			MaxConnLifetime: app.cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: app.cfg.Database.MaxConnIdleTime,
		})
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.Database.File)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Database.Driver)
	return nil
}

// initEvents picks Kafka when brokers are configured and the log publisher otherwise
func (app *Application) initEvents() {
	if len(app.cfg.Kafka.Brokers) == 0 {
		app.publisher = events.LogPublisher{Level: slog.LevelDebug}
		return
	}

	app.publisher = events.NewKafkaPublisher(app.cfg.Kafka.Brokers, app.cfg.Kafka.Topic)
	app.logger.Info("publishing token events to kafka",
		"brokers", app.cfg.Kafka.Brokers,
		"topic", app.cfg.Kafka.Topic,
	)
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	clients, err := service.NewClientRegistry(app.cfg.DomainClients())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	app.logger.Info("client registry loaded", "clients", clients.Len())

	metrics := service.NewMetrics(app.registry)

	app.userService = &service.UserService{Store: app.db, Metrics: metrics}
	app.authService = &service.AuthService{
		Store: app.db,
		Users: app.userService,
		Tokens: &service.TokenService{
			Signer:     app.signer,
			Issuer:     app.cfg.Token.Issuer,
			Audience:   app.cfg.Token.Audience,
			AccessTTL:  app.cfg.Token.AccessTTL(),
			RefreshTTL: app.cfg.Token.RefreshTTL(),
		},
		Clients: clients,
		Events:  app.publisher,
		Metrics: metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Metrics = metrics
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.RateLimits = app.cfg.HTTPRateLimits()
	router.Gatherer = app.registry
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           otelhttp.NewHandler(router, "auth"),
		ReadHeaderTimeout: 3 * time.Second,
	}
}

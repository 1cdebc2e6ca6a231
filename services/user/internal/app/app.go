package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Azizo-B/microservices/pkg/database"
	"github.com/Azizo-B/microservices/pkg/health"
	"github.com/Azizo-B/microservices/pkg/httputil"
	pkgkafka "github.com/Azizo-B/microservices/pkg/kafka"
	"github.com/Azizo-B/microservices/pkg/middleware"
	"github.com/Azizo-B/microservices/pkg/tracing"
	"github.com/Azizo-B/microservices/services/user/internal/auth"
	"github.com/Azizo-B/microservices/services/user/internal/config"
	"github.com/Azizo-B/microservices/services/user/internal/event"
	handler "github.com/Azizo-B/microservices/services/user/internal/handler/http"
	"github.com/Azizo-B/microservices/services/user/internal/repository/postgres"
	"github.com/Azizo-B/microservices/services/user/internal/service"
	"github.com/Azizo-B/microservices/services/user/migrations"
)

// App wires together all dependencies and runs the user service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	httputil.ExposeInternal = cfg.Environment != "production"

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "user",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.TracingEndpoint,
		SampleRate:     cfg.TracingSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "user")

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	signer := auth.NewSigner(cfg.JWTSecret, cfg.JWTAudience, cfg.JWTIssuer, cfg.JWTExpiry)
	hasher := auth.NewPasswordHasher()

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	permissionRepo := postgres.NewPermissionRepository(pool)
	appRepo := postgres.NewApplicationRepository(pool)
	deviceRepo := postgres.NewDeviceRepository(pool)

	eventProducer := event.NewProducer(producer, cfg.Environment, logger)

	permissionService := service.NewPermissionService(permissionRepo, userRepo, logger)
	tokenService := service.NewTokenService(tokenRepo, userRepo, signer, hasher, permissionService, eventProducer, logger)
	userService := service.NewUserService(userRepo, appRepo, deviceRepo, permissionService, tokenService, hasher, eventProducer, logger)
	roleService := service.NewRoleService(roleRepo, logger)
	applicationService := service.NewApplicationService(appRepo, logger)
	deviceService := service.NewDeviceService(deviceRepo, permissionService, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(handler.RouterDeps{
		Tokens:        tokenService,
		Users:         userService,
		Roles:         roleService,
		Permissions:   permissionService,
		Applications:  applicationService,
		Devices:       deviceService,
		HealthHandler: healthHandler,
		Logger:        logger,
		CORS:          middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		AuthDelayMax:  cfg.AuthDelayMax,
		AuthRateRPS:   cfg.AuthRateRPS,
		AuthRateBurst: cfg.AuthRateBurst,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: drain HTTP, flush
// spans, close the Kafka producer, close the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// Close waits for in-flight async publishes before closing the writer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

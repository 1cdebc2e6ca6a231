package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Azizo-B/microservices/pkg/authclient"
	"github.com/Azizo-B/microservices/pkg/database"
	"github.com/Azizo-B/microservices/pkg/health"
	"github.com/Azizo-B/microservices/pkg/httpclient"
	"github.com/Azizo-B/microservices/pkg/httputil"
	pkgkafka "github.com/Azizo-B/microservices/pkg/kafka"
	"github.com/Azizo-B/microservices/pkg/middleware"
	"github.com/Azizo-B/microservices/pkg/tracing"
	"github.com/Azizo-B/microservices/services/notification/internal/config"
	"github.com/Azizo-B/microservices/services/notification/internal/crypto"
	"github.com/Azizo-B/microservices/services/notification/internal/domain"
	"github.com/Azizo-B/microservices/services/notification/internal/event"
	handler "github.com/Azizo-B/microservices/services/notification/internal/handler/http"
	"github.com/Azizo-B/microservices/services/notification/internal/repository/postgres"
	"github.com/Azizo-B/microservices/services/notification/internal/sender"
	"github.com/Azizo-B/microservices/services/notification/internal/service"
	"github.com/Azizo-B/microservices/services/notification/migrations"
)

// dedupTTL bounds how long processed event IDs are remembered.
const dedupTTL = 24 * time.Hour

// App wires together all dependencies and runs the notification service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	httpServer     *http.Server
	consumers      *event.ConsumerSet
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	httputil.ExposeInternal = cfg.Environment != "production"

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "notification",
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
	database.RegisterPoolMetrics(pool, "notification")

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	encryptor, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init encryptor: %w", err)
	}

	// Peer auth client against the user service, plus the service's own
	// token source for event processing.
	authCfg := authclient.Config{
		BaseURL:         cfg.UserServiceURL,
		ServiceAppID:    cfg.ServiceAppID,
		ServiceEmail:    cfg.ServiceEmail,
		ServicePassword: cfg.ServicePassword,
	}
	hc := httpclient.New(httpclient.DefaultConfig())
	authClient := authclient.New(authCfg, hc)

	// Build the dependency graph.
	notificationRepo := postgres.NewNotificationRepository(pool)
	senderRepo := postgres.NewSenderRepository(pool)

	dispatchers := sender.NewRegistry()
	dispatchers.Register(domain.NotificationTypeEmail, sender.NewLogDispatcher(logger))

	senderService := service.NewSenderService(senderRepo, encryptor, authClient, logger)
	notificationService := service.NewNotificationService(notificationRepo, senderService, dispatchers, authClient, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// Event consumption is optional: without a default sender there is
	// nothing to dispatch from, so only the HTTP API runs.
	var consumers *event.ConsumerSet
	var redisClient *redis.Client
	if cfg.DefaultSenderID != "" {
		redisClient, err = database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})

		store := pkgkafka.NewRedisIdempotencyStore(redisClient, "notification-service", dedupTTL)
		tokens := authclient.NewTokenSource(authCfg, hc)
		userClient := event.NewUserClient(cfg.UserServiceURL, hc, tokens)
		eventHandler := event.NewHandler(notificationService, userClient, cfg.DefaultSenderID, logger)
		consumers = event.NewConsumerSet(cfg.KafkaBrokers, cfg.Environment, store, eventHandler, logger)
	} else {
		logger.Warn("DEFAULT_SENDER_ID not set, event consumption disabled")
	}

	router := handler.NewRouter(handler.RouterDeps{
		Notifications: notificationService,
		Senders:       senderService,
		Auth:          authClient,
		HealthHandler: healthHandler,
		Logger:        logger,
		CORS:          middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
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
		redis:          redisClient,
		httpServer:     httpServer,
		consumers:      consumers,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the event consumers and blocks until the
// context is canceled.
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

	var wg sync.WaitGroup
	if a.consumers != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.consumers.Start(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	wg.Wait()
	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.consumers != nil {
		if err := a.consumers.Close(); err != nil {
			a.logger.Error("consumer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

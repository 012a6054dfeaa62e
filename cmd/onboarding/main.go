package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/esouk/onboarding/docs"
	"github.com/esouk/onboarding/internal/config"
	"github.com/esouk/onboarding/internal/onboarding/client"
	grpcDelivery "github.com/esouk/onboarding/internal/onboarding/delivery/grpc"
	httpDelivery "github.com/esouk/onboarding/internal/onboarding/delivery/http"
	"github.com/esouk/onboarding/internal/onboarding/imagestore"
	"github.com/esouk/onboarding/internal/onboarding/repository"
	"github.com/esouk/onboarding/internal/onboarding/session"
	"github.com/esouk/onboarding/kafka"
	"github.com/esouk/onboarding/pkg/auth"
	"github.com/esouk/onboarding/pkg/backend"
	"github.com/esouk/onboarding/pkg/database"
	"github.com/esouk/onboarding/pkg/logger"
	"github.com/esouk/onboarding/pkg/tracing"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)
	auth.SetSecret(cfg.JWTSecret)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting onboarding service")

	tp, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open state store")
	}
	defer closeStore()

	images, err := imagestore.New(ctx, cfg.Images)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("driver", cfg.Images.Driver).Msg("Failed to open image store")
	}

	api := backend.NewClient("esouk-backend", cfg.Backend)
	backendClient := client.NewBackendClient(api, images)
	deps := session.Dependencies{
		Shops:    backendClient,
		Products: backendClient,
		Store:    store,
		Images:   images,
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka unavailable - onboarding events disabled")
		} else {
			defer publisher.Close()
			deps.Events = publisher
		}
	}

	sessions := session.NewRegistry(deps)
	handler := httpDelivery.NewOnboardingHandler(sessions, images)

	httpServer := newHTTPServer(cfg, handler, store)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("backend", cfg.Backend.BaseURL).
			Str("store", cfg.Store.Driver).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	health := grpcDelivery.NewHealthServer(store)
	go health.Watch(ctx, 15*time.Second)
	grpcServer := grpcDelivery.NewServer(health)
	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("Failed to listen")
		}
		logger.Logger.Info().Str("port", cfg.GRPCPort).Msg("gRPC health server started")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Logger.Error().Err(err).Msg("gRPC server stopped")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	grpcServer.GracefulStop()
}

func newHTTPServer(cfg *config.Config, handler *httpDelivery.OnboardingHandler, store repository.Store) *http.Server {
	router := mux.NewRouter()

	mwConfig := httpDelivery.DefaultMiddlewareConfig()
	httpDelivery.RegisterMiddlewares(router, mwConfig)

	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router, store)
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)
	router.Handle("/metrics", promhttp.Handler())

	// No write timeout: /api/onboarding/stream stays open
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpDelivery.SetupCORS(mwConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// openStore picks the snapshot store and wraps it with tracing
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	noop := func() {}

	switch cfg.Store.Driver {
	case "", "memory":
		return repository.NewTracingStateStore(repository.NewMemoryStateStore(), "memory"), noop, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("redis: %w", err)
		}
		store := repository.NewRedisStateStore(rdb, cfg.Store.TTL)
		return repository.NewTracingStateStore(store, "redis"), func() { _ = rdb.Close() }, nil

	case "postgres":
		db, err := database.NewGormConnection(cfg.Postgres)
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, err
		}
		store := repository.NewGormStateStore(db)
		if err := store.AutoMigrate(); err != nil {
			_ = sqlDB.Close()
			return nil, noop, fmt.Errorf("migrate: %w", err)
		}
		return repository.NewTracingStateStore(store, "postgres"), func() { _ = sqlDB.Close() }, nil

	case "mongo":
		mdb, err := database.NewMongoConnection(cfg.Mongo)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mdb.Client().Disconnect(ctx)
		}
		return repository.NewTracingStateStore(repository.NewMongoStateStore(mdb), "mongo"), closeFn, nil

	default:
		return nil, noop, fmt.Errorf("unknown state store driver %q", cfg.Store.Driver)
	}
}

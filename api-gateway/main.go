package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/esouk/onboarding/api-gateway/middleware"
	"github.com/esouk/onboarding/api-gateway/proxy"
	"github.com/esouk/onboarding/api-gateway/routes"
	"github.com/esouk/onboarding/internal/catalog"
	"github.com/esouk/onboarding/internal/config"
	"github.com/esouk/onboarding/pkg/auth"
	"github.com/esouk/onboarding/pkg/backend"
	"github.com/esouk/onboarding/pkg/breaker"
	"github.com/esouk/onboarding/pkg/logger"
	"github.com/esouk/onboarding/pkg/tracing"
)

func main() {
	cfg := config.LoadGateway()

	logger.Init(cfg.ServiceName, cfg.Environment == "development")
	logger.SetLevel(cfg.LogLevel)
	auth.SetSecret(cfg.JWTSecret)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Msg("Starting API Gateway")

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

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", cfg.Redis.Addr).
			Msg("Failed to connect to Redis - rate limiting and catalog cache disabled")
		redisClient = nil
	} else {
		logger.Logger.Info().Str("redis_addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	var catalogCache catalog.Cache
	if redisClient != nil {
		catalogCache = catalog.NewRedisCache(redisClient)
	}
	catalogService := catalog.NewService(backend.NewClient("catalog", cfg.Catalog), catalogCache, cfg.CacheTTL)

	breakers := breaker.NewManager(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)

	app := fiber.New(fiber.Config{
		AppName:      "E-Souk API Gateway",
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	setupMiddleware(app, cfg, redisClient)
	routes.SetupRoutes(app, cfg, breakers, catalogService)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("API Gateway starting on %s", addr)
		for name, svc := range cfg.Services {
			log.Printf("   - %s: %s", name, svc.BaseURL)
		}
		log.Printf("   - catalog: %s", cfg.Catalog.BaseURL)

		if err := app.Listen(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down API Gateway...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Println("API Gateway stopped")
}

// setupMiddleware registers the global middleware chain
func setupMiddleware(app *fiber.App, cfg *config.GatewayConfig, redisClient *redis.Client) {
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware(cfg.ServiceName))
	app.Use(middleware.StructuredLoggingMiddleware())

	if cfg.IsDevelopment() {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
		}))
	}

	// Vendor identity first so the limiter can count per vendor
	app.Use(middleware.OptionalAuthMiddleware())
	if redisClient != nil {
		logger.Logger.Info().Int("per_minute", cfg.RateLimit).Msg("Rate limiting enabled")
		app.Use(middleware.NewRateLimiter(redisClient, cfg.RateLimit, time.Minute).Middleware())
	} else {
		logger.Logger.Warn().Msg("Rate limiting disabled (Redis not available)")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-Id, traceparent, tracestate",
		AllowCredentials: cfg.AllowOrigins != "*",
		ExposeHeaders:    "X-Request-Id, X-Trace-Id, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:           86400,
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c *fiber.Ctx) bool {
			return proxy.IsStream(c.Path())
		},
	}))
}

// customErrorHandler renders errors returned by handlers
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success":   false,
		"error":     err.Error(),
		"path":      c.Path(),
		"method":    c.Method(),
		"requestId": c.GetRespHeader(fiber.HeaderXRequestID),
	})
}

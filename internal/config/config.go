package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/esouk/onboarding/internal/onboarding/imagestore"
	"github.com/esouk/onboarding/pkg/backend"
	"github.com/esouk/onboarding/pkg/database"
	"github.com/esouk/onboarding/pkg/tracing"
)

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds broker settings; no brokers disables events
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// StoreConfig selects where onboarding snapshots are kept
type StoreConfig struct {
	Driver string // memory, redis, postgres or mongo
	TTL    time.Duration
}

// Config holds the onboarding service configuration
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string
	GRPCPort    string
	JWTSecret   string

	Backend  backend.Config
	Store    StoreConfig
	Redis    RedisConfig
	Postgres database.Config
	Mongo    database.MongoConfig
	Images   imagestore.Config
	Kafka    KafkaConfig
	Tracing  tracing.Config
}

func (c *Config) IsDevelopment() bool { return c.Environment == "development" }

// Load reads a .env file when present, then the environment
func Load() *Config {
	_ = godotenv.Load()

	serviceName := getEnv("OTEL_SERVICE_NAME", "onboarding-service")
	return &Config{
		ServiceName: serviceName,
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8084"),
		GRPCPort:    getEnv("GRPC_PORT", "9094"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		Backend: backend.Config{
			BaseURL:     getEnv("BACKEND_URL", "http://localhost:8080/api"),
			Timeout:     getDuration("BACKEND_TIMEOUT", 30*time.Second),
			MaxFailures: getInt("BACKEND_MAX_FAILURES", 5),
			OpenTimeout: getDuration("BACKEND_OPEN_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver: getEnv("STATE_STORE", "memory"),
			TTL:    getDuration("STATE_TTL", 7*24*time.Hour),
		},
		Redis: loadRedis(),
		Postgres: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "onboardingdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: database.MongoConfig{
			URI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName:  getEnv("MONGO_DB", "onboarding"),
			Timeout: getDuration("MONGO_TIMEOUT", 10*time.Second),
		},
		Images: imagestore.Config{
			Driver:   getEnv("IMAGE_STORE_DRIVER", "local"),
			LocalDir: getEnv("IMAGE_STORE_DIR", "./storage/staging"),
			S3: imagestore.S3Config{
				Region: getEnv("S3_REGION", ""),
				Bucket: getEnv("S3_BUCKET", ""),
				Prefix: getEnv("S3_PREFIX", "onboarding"),
			},
		},
		Kafka: KafkaConfig{
			Brokers: getList("KAFKA_BROKERS"),
			GroupID: getEnv("KAFKA_GROUP_ID", "onboarding-notifier"),
		},
		Tracing: tracing.Config{
			ServiceName:    serviceName,
			ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			SampleRatio:    getFloat("TRACE_SAMPLE_RATIO", 1),
		},
	}
}

// ServiceConfig describes an upstream behind the gateway
type ServiceConfig struct {
	Name        string
	BaseURL     string
	Instances   []string // BaseURL is used when empty
	Timeout     time.Duration
	HealthCheck string
}

// BreakerConfig tunes the per-upstream circuit breakers of the gateway
type BreakerConfig struct {
	MaxFailures int
	Timeout     time.Duration
}

// GatewayConfig holds the gateway configuration
type GatewayConfig struct {
	ServiceName  string
	Environment  string
	LogLevel     string
	Port         string
	AllowOrigins string
	JWTSecret    string
	Redis        RedisConfig
	RateLimit    int
	CacheTTL     time.Duration
	Breaker      BreakerConfig
	Catalog      backend.Config
	Services     map[string]ServiceConfig
	Tracing      tracing.Config
}

func (c *GatewayConfig) IsDevelopment() bool { return c.Environment == "development" }

// LoadGateway loads the gateway configuration
func LoadGateway() *GatewayConfig {
	_ = godotenv.Load()

	serviceName := getEnv("OTEL_SERVICE_NAME", "api-gateway")
	return &GatewayConfig{
		ServiceName:  serviceName,
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("GATEWAY_PORT", "8000"),
		AllowOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		JWTSecret:    getEnv("JWT_SECRET", "change-me"),
		Redis:        loadRedis(),
		RateLimit:    getInt("RATE_LIMIT_PER_MINUTE", 100),
		CacheTTL:     getDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		Breaker: BreakerConfig{
			MaxFailures: getInt("UPSTREAM_MAX_FAILURES", 5),
			Timeout:     getDuration("UPSTREAM_OPEN_TIMEOUT", 30*time.Second),
		},
		Catalog: backend.Config{
			BaseURL:     getEnv("BACKEND_URL", "http://localhost:8080/api"),
			Timeout:     getDuration("BACKEND_TIMEOUT", 30*time.Second),
			MaxFailures: getInt("BACKEND_MAX_FAILURES", 5),
			OpenTimeout: getDuration("BACKEND_OPEN_TIMEOUT", 30*time.Second),
		},
		Services: map[string]ServiceConfig{
			"onboarding": {
				Name:        "onboarding-service",
				BaseURL:     getEnv("ONBOARDING_SERVICE_URL", "http://localhost:8084"),
				Instances:   getList("ONBOARDING_SERVICE_INSTANCES"),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
		},
		Tracing: tracing.Config{
			ServiceName:    serviceName,
			ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			SampleRatio:    getFloat("TRACE_SAMPLE_RATIO", 1),
		},
	}
}

func loadRedis() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getInt("REDIS_DB", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

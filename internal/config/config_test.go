package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("STATE_STORE", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("BACKEND_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, "onboarding-service", cfg.ServiceName)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STATE_STORE", "redis")
	t.Setenv("STATE_TTL", "2h")
	t.Setenv("BACKEND_MAX_FAILURES", "oops")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Store.TTL)
	assert.Equal(t, 5, cfg.Backend.MaxFailures)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadGateway(t *testing.T) {
	t.Setenv("ONBOARDING_SERVICE_URL", "http://onboarding:8084")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")

	cfg := LoadGateway()
	assert.Equal(t, "http://onboarding:8084", cfg.Services["onboarding"].BaseURL)
	assert.Equal(t, 100, cfg.RateLimit)
}

package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/esouk/onboarding/internal/config"
	"github.com/esouk/onboarding/pkg/logger"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ServiceHealth is the result of probing one upstream
type ServiceHealth struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	URL       string        `json:"url"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// GatewayHealth aggregates every upstream
type GatewayHealth struct {
	Gateway  string                   `json:"gateway"`
	Status   string                   `json:"status"`
	Services map[string]ServiceHealth `json:"services"`
	Uptime   time.Duration            `json:"uptime_seconds"`
}

// HealthChecker polls the health endpoints of the upstream services
type HealthChecker struct {
	name      string
	services  map[string]config.ServiceConfig
	client    *http.Client
	startTime time.Time
}

func NewHealthChecker(name string, services map[string]config.ServiceConfig) *HealthChecker {
	return &HealthChecker{
		name:      name,
		services:  services,
		client:    &http.Client{Timeout: 5 * time.Second},
		startTime: time.Now(),
	}
}

// CheckService checks a single upstream
func (h *HealthChecker) CheckService(ctx context.Context, name string, svc config.ServiceConfig) ServiceHealth {
	start := time.Now()
	result := ServiceHealth{
		Name:      name,
		URL:       svc.BaseURL,
		Timestamp: start,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.BaseURL+svc.HealthCheck, nil)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("Failed to create request: %v", err)
		result.Latency = time.Since(start)
		return result
	}

	resp, err := h.client.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("Failed to reach service: %v", err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		result.Status = StatusHealthy
	} else {
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("Unexpected status code: %d", resp.StatusCode)
	}
	return result
}

// CheckAllServices checks every upstream concurrently
func (h *HealthChecker) CheckAllServices(ctx context.Context) GatewayHealth {
	services := make(map[string]ServiceHealth, len(h.services))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, svc := range h.services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := h.CheckService(ctx, name, svc)

			mu.Lock()
			services[name] = result
			mu.Unlock()

			if result.Status != StatusHealthy {
				logger.Logger.Warn().
					Str("service", name).
					Str("error", result.Error).
					Msg("Service health check failed")
			}
		}()
	}
	wg.Wait()

	return GatewayHealth{
		Gateway:  h.name,
		Status:   overallStatus(services),
		Services: services,
		Uptime:   time.Since(h.startTime),
	}
}

func overallStatus(services map[string]ServiceHealth) string {
	healthy := 0
	for _, svc := range services {
		if svc.Status == StatusHealthy {
			healthy++
		}
	}

	switch {
	case healthy == len(services):
		return StatusHealthy
	case healthy > 0:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

// QuickCheck reports on the gateway alone
func (h *HealthChecker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    StatusHealthy,
		"gateway":   h.name,
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}

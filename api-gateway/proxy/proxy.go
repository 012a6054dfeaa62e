package proxy

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/esouk/onboarding/api-gateway/loadbalancer"
	"github.com/esouk/onboarding/internal/config"
	"github.com/esouk/onboarding/pkg/logger"
)

// ReverseProxy forwards requests to the upstream services
type ReverseProxy struct {
	services      map[string]config.ServiceConfig
	client        *http.Client
	loadBalancers map[string]*loadbalancer.RoundRobin
}

// NewReverseProxy creates a proxy with one load balancer per service
func NewReverseProxy(services map[string]config.ServiceConfig) *ReverseProxy {
	loadBalancers := make(map[string]*loadbalancer.RoundRobin, len(services))
	for name, svc := range services {
		instances := svc.Instances
		if len(instances) == 0 && svc.BaseURL != "" {
			instances = []string{svc.BaseURL}
		}
		loadBalancers[name] = loadbalancer.NewRoundRobin(name, instances)
	}

	return &ReverseProxy{
		services:      services,
		loadBalancers: loadBalancers,
		// Timeouts are per request so event streams can stay open
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// ProxyRequest forwards the request to serviceName. Event streams are relayed
// as they arrive instead of being buffered.
func (p *ReverseProxy) ProxyRequest(c *fiber.Ctx, serviceName string) error {
	lb, ok := p.loadBalancers[serviceName]
	if !ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Load balancer for '%s' not found", serviceName),
		})
	}

	serverURL := lb.Next()
	if serverURL == "" {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("No available instances for '%s'", serviceName),
		})
	}

	logger.Logger.Debug().
		Str("service", serviceName).
		Str("target_url", serverURL).
		Str("path", c.Path()).
		Msg("Load balancer selected instance")

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	stream := IsStream(c.Path())
	if stream || p.services[serviceName].Timeout <= 0 {
		ctx, cancel = context.WithCancel(c.UserContext())
	} else {
		ctx, cancel = context.WithTimeout(c.UserContext(), p.services[serviceName].Timeout)
	}

	req, err := http.NewRequestWithContext(ctx, c.Method(), targetURL(c, serverURL), bytes.NewReader(c.Body()))
	if err != nil {
		cancel()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create request",
		})
	}
	copyHeaders(c, req)

	resp, err := p.client.Do(req)
	if err != nil {
		cancel()
		logger.Warn(c.UserContext()).
			Err(err).
			Str("service", serviceName).
			Str("target_url", serverURL).
			Msg("Upstream unreachable")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to reach backend service",
			"service": serviceName,
		})
	}

	copyResponseHeaders(c, resp)
	c.Status(resp.StatusCode)

	if stream && strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer cancel()
			defer resp.Body.Close()
			relay(w, resp.Body)
		})
		return nil
	}

	defer cancel()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read response",
		})
	}
	return c.Send(body)
}

// LoadBalancers returns the balancers by service, for stats
func (p *ReverseProxy) LoadBalancers() map[string]*loadbalancer.RoundRobin {
	return p.loadBalancers
}

// IsStream reports whether path is a server-sent event endpoint
func IsStream(path string) bool {
	return strings.HasSuffix(strings.TrimRight(path, "/"), "/stream")
}

// relay copies chunks until the upstream or the client goes away
func relay(w *bufio.Writer, body io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if werr := w.Flush(); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func targetURL(c *fiber.Ctx, serverURL string) string {
	target := strings.TrimRight(serverURL, "/") + string(c.Request().URI().Path())
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		target += "?" + qs
	}
	return target
}

func copyHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		if strings.EqualFold(k, "host") || strings.EqualFold(k, "content-length") {
			return
		}
		req.Header.Set(k, string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}

func copyResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for key, values := range resp.Header {
		if strings.EqualFold(key, "content-length") {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
}

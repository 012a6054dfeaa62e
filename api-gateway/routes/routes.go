package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/esouk/onboarding/api-gateway/health"
	"github.com/esouk/onboarding/api-gateway/middleware"
	"github.com/esouk/onboarding/api-gateway/proxy"
	"github.com/esouk/onboarding/internal/catalog"
	"github.com/esouk/onboarding/internal/config"
	"github.com/esouk/onboarding/pkg/breaker"
)

// RouteDefinition maps a path prefix to an upstream service
type RouteDefinition struct {
	Prefix      string `json:"prefix"`
	ServiceName string `json:"service"`
	Description string `json:"description"`
	RequireAuth bool   `json:"require_auth"`
}

// Routes are the proxied prefixes
var Routes = []RouteDefinition{
	{
		Prefix:      "/api/onboarding",
		ServiceName: "onboarding",
		Description: "Vendor onboarding wizard (shop, products, navigation, event stream)",
		RequireAuth: true,
	},
}

// SetupRoutes registers health, catalog and proxied routes
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig, breakers *breaker.Manager, catalogService *catalog.Service) {
	reverseProxy := proxy.NewReverseProxy(cfg.Services)
	healthChecker := health.NewHealthChecker(cfg.ServiceName, cfg.Services)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		status := healthChecker.CheckAllServices(ctx)
		code := fiber.StatusOK
		if status.Status == health.StatusUnhealthy {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(status)
	})

	app.Get("/health/services", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()
		return c.JSON(healthChecker.CheckAllServices(ctx))
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "E-Souk API Gateway",
			"version": cfg.Tracing.ServiceVersion,
			"routes":  Routes,
			"catalog": []string{"/api/catalog/products", "/api/catalog/shops"},
		})
	})

	app.Get("/gateway/stats", func(c *fiber.Ctx) error {
		balancers := fiber.Map{}
		for name, lb := range reverseProxy.LoadBalancers() {
			balancers[name] = lb.Stats()
		}
		return c.JSON(fiber.Map{
			"circuit_breakers": breakers.AllStats(),
			"load_balancers":   balancers,
		})
	})

	catalogHandler := NewCatalogHandler(catalogService)
	catalogGroup := app.Group("/api/catalog")
	catalogGroup.Get("/products", catalogHandler.SearchProducts)
	catalogGroup.Get("/shops", catalogHandler.SearchShops)

	for _, route := range Routes {
		registerServiceRoutes(app, route, reverseProxy, breakers)
	}
}

// registerServiceRoutes proxies every method under route.Prefix
func registerServiceRoutes(app *fiber.App, route RouteDefinition, reverseProxy *proxy.ReverseProxy, breakers *breaker.Manager) {
	handler := func(c *fiber.Ctx) error {
		return reverseProxy.ProxyRequest(c, route.ServiceName)
	}

	var handlers []fiber.Handler
	if route.RequireAuth {
		handlers = append(handlers, middleware.AuthMiddleware())
	}
	handlers = append(handlers, middleware.CircuitBreakerMiddleware(breakers, route.ServiceName), handler)

	app.All(route.Prefix, handlers...)
	app.All(route.Prefix+"/*", handlers...)
}

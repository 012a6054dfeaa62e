package middleware

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/esouk/onboarding/pkg/breaker"
	"github.com/esouk/onboarding/pkg/logger"
)

// CircuitBreakerMiddleware fails fast while the upstream keeps answering
// with server errors
func CircuitBreakerMiddleware(manager *breaker.Manager, service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cb := manager.GetOrCreate(service)

		var handlerErr error
		err := cb.Call(func() error {
			handlerErr = c.Next()
			if handlerErr != nil {
				return handlerErr
			}
			if status := c.Response().StatusCode(); status >= fiber.StatusInternalServerError {
				return fmt.Errorf("upstream %s responded %d", service, status)
			}
			return nil
		})

		if errors.Is(err, breaker.ErrOpen) {
			logger.Warn(c.UserContext()).
				Str("service", service).
				Str("path", c.Path()).
				Msg("Circuit breaker is open - request blocked")

			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"error":   "Service temporarily unavailable. Please try again later.",
				"service": service,
			})
		}
		return handlerErr
	}
}

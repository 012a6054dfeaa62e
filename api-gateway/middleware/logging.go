package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/esouk/onboarding/pkg/logger"
)

// StructuredLoggingMiddleware logs one line per completed request
func StructuredLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		traceID := "no-trace"
		if span := trace.SpanFromContext(c.UserContext()); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		var event *zerolog.Event
		switch {
		case err != nil || status >= 500:
			event = logger.Error(c.UserContext())
		case status >= 400:
			event = logger.Warn(c.UserContext())
		default:
			event = logger.Info(c.UserContext())
		}

		event.
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Int("status", status).
			Dur("duration", duration).
			Int64("duration_ms", duration.Milliseconds()).
			Str("trace_id", traceID).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("vendor_id", VendorID(c)).
			Msg("Gateway request completed")

		return err
	}
}

package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/esouk/onboarding/pkg/auth"
)

// Locals keys set by the auth middlewares
const (
	LocalVendorID = "vendor_id"
	LocalUsername = "username"
	LocalRole     = "role"
)

// AuthMiddleware rejects requests without a valid vendor token
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Authorization header required",
			})
		}

		token, ok := auth.BearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid authorization header format",
			})
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid token",
			})
		}

		attachClaims(c, token, claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware attaches the vendor when a valid token is present
func OptionalAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Request().Header.Del("X-Vendor-Id")

		if token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			if claims, err := auth.ValidateToken(token); err == nil {
				attachClaims(c, token, claims)
			}
		}
		return c.Next()
	}
}

func attachClaims(c *fiber.Ctx, token string, claims *auth.Claims) {
	c.Locals(LocalVendorID, claims.VendorID)
	c.Locals(LocalUsername, claims.Username)
	c.Locals(LocalRole, claims.Role)

	ctx := auth.WithToken(c.UserContext(), token)
	c.SetUserContext(auth.WithClaims(ctx, claims))

	c.Request().Header.Set("X-Vendor-Id", claims.VendorID)
}

// VendorID returns the authenticated vendor, if any
func VendorID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalVendorID).(string)
	return id
}

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esouk/onboarding/pkg/auth"
)

func vendorToken(t *testing.T, vendor string) string {
	t.Helper()
	auth.SetSecret("middleware-secret")
	token, err := auth.GenerateToken(vendor, "amira", "vendor", time.Hour)
	require.NoError(t, err)
	return token
}

func TestRateLimiter_LimitsPerVendor(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Use(OptionalAuthMiddleware(), NewRateLimiter(rdb, 2, time.Minute).Middleware())
	app.Get("/api/catalog/products", func(c *fiber.Ctx) error { return c.SendString("ok") })

	token := vendorToken(t, "vendor-1")
	call := func(bearer string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/api/catalog/products", nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	first := call(token)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "2", first.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header.Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, call(token).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, call(token).StatusCode)

	// anonymous callers are counted by IP
	assert.Equal(t, http.StatusOK, call("").StatusCode)
	assert.True(t, mr.Exists("ratelimit:vendor:vendor-1"))
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	mr.Close()

	app := fiber.New()
	app.Use(NewRateLimiter(rdb, 1, time.Minute).Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	token := vendorToken(t, "vendor-9")

	app := fiber.New()
	app.Get("/private", AuthMiddleware(), func(c *fiber.Ctx) error {
		claims, ok := auth.ClaimsFromContext(c.UserContext())
		if !ok || auth.TokenFromContext(c.UserContext()) != token {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(VendorID(c) + "|" + claims.Username + "|" + c.Get("X-Vendor-Id"))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token " + token, http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "vendor-9|amira|vendor-9", string(body))
			}
		})
	}
}

func TestOptionalAuthMiddleware_DropsSpoofedVendor(t *testing.T) {
	app := fiber.New()
	app.Get("/", OptionalAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(VendorID(c) + "|" + c.Get("X-Vendor-Id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Vendor-Id", "someone-else")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "|", string(body))
}

package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/storefront-data/internal/middleware"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var authOptions = services.AuthOptions{Secret: []byte("middleware-secret-0123456789"), TTL: time.Hour}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return utils.ServiceErrorResponse(c, err, "test")
		},
	})
	app.Use(middleware.VersionMiddleware())
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})
	app.Get("/admin", middleware.AuthAdmin(authOptions), func(c *fiber.Ctx) error {
		claims := c.Locals(middleware.LocalsAdmin).(*services.AdminClaims)
		return c.SendString(claims.Username)
	})
	return app
}

func signToken(t *testing.T, secret []byte, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.AdminClaims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestVersionMiddleware(t *testing.T) {
	app := newApp()

	for _, requested := range []string{"", "1", "1.0"} {
		req := httptest.NewRequest("GET", "/open", nil)
		if requested != "" {
			req.Header.Set("X-Api-Version", requested)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, middleware.APIVersion, resp.Header.Get("X-Api-Version"))
	}
}

func TestAuthAdmin(t *testing.T) {
	app := newApp()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic YWRtaW46YWRtaW4=", fiber.StatusUnauthorized},
		{"garbage token", "Bearer garbage", fiber.StatusForbidden},
		{"expired token", "Bearer " + signToken(t, authOptions.Secret, time.Now().Add(-time.Minute)), fiber.StatusForbidden},
		{"foreign token", "Bearer " + signToken(t, []byte("some-other-secret-0123"), time.Now().Add(time.Hour)), fiber.StatusForbidden},
		{"valid token", "Bearer " + signToken(t, authOptions.Secret, time.Now().Add(time.Hour)), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

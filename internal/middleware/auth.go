package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/types"
)

// LocalsAdmin is the fiber.Ctx locals key holding the verified *services.AdminClaims
const LocalsAdmin = "admin"

// AuthAdmin validates the admin bearer token
func AuthAdmin(opts services.AuthOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, opts, "data.authorization.admin")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, opts services.AuthOptions, errorType string) error {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: "Authorization bearer token not found",
			Type:    errorType,
		}
	}

	claims, err := services.ValidateToken(opts, strings.TrimSpace(token))
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: err.Error(),
			Type:    errorType,
		}
	}

	c.Locals(LocalsAdmin, claims)

	return c.Next()
}

package middleware

import (
	"strings"

	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the bearer token and stores the claims for
// downstream handlers.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid authorization header",
			})
		}

		claims, err := jwt.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

// ActorFromCtx builds the explicit actor every core service takes.
func ActorFromCtx(c *fiber.Ctx) model.Actor {
	claims := c.Locals("user").(*jwt.Claims)
	return model.Actor{
		ID:             claims.UserID,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
	}
}

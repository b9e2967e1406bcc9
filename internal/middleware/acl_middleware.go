package middleware

import (
	"leadflow_backend/internal/model"
	"leadflow_backend/pkg/database"
	"leadflow_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireRole restricts a route to the listed roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to perform this action",
		})
	}
}

// RequireManager shortcuts the common owner-or-manager gate.
func RequireManager() fiber.Handler {
	return RequireRole(model.RoleOwner, model.RoleManager)
}

// CheckLeadAccess verifies the lead in the :id param belongs to the
// caller's organization before the handler runs.
func CheckLeadAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		leadID := c.Params("id")

		var lead model.Lead
		if err := database.GetDB().First(&lead, leadID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lead not found",
			})
		}

		if lead.OrganizationID != claims.OrganizationID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to access this lead",
			})
		}

		return c.Next()
	}
}

package middleware

import (
	"labstock/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (m *Middleware) RequireAdmin() fiber.Handler {
	log := m.log.Function("RequireAdmin")

	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			log.Info("user not found in context")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if user.Role != models.RoleAdmin {
			log.Info("user is not admin", "username", user.Username, "role", user.Role)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}

		return c.Next()
	}
}

// RequireWrite blocks read-only accounts from mutating endpoints
func (m *Middleware) RequireWrite() fiber.Handler {
	log := m.log.Function("RequireWrite")

	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			log.Info("user not found in context")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if !user.Role.CanWrite() {
			log.Info("read-only user attempted write", "username", user.Username)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Write access required",
			})
		}

		return c.Next()
	}
}

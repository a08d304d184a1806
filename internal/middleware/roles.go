package middleware

import "github.com/gofiber/fiber/v2"

const (
	RoleAdmin        = "admin"
	RoleReception    = "reception"
	RoleProfessional = "professional"
)

// RequireRoles lets the request through only when the token role is one of roles.
// It must run after AuthRequired.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": fiber.Map{"code": "FORBIDDEN", "message": "forbidden"},
			})
		}
		return c.Next()
	}
}

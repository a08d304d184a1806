package handlers

import "github.com/gofiber/fiber/v2"

// Me echoes the identity carried by the bearer token. Accounts live in the clinic's
// identity provider, so there is nothing else to look up.
func Me(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return invalidToken(c)
	}
	role, ok := c.Locals("role").(string)
	if !ok || role == "" {
		return invalidToken(c)
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":   userID,
			"role": role,
		},
	})
}

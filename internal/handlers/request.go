package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

func parseUserID(c *fiber.Ctx) (int64, error) {
	userIDValue := c.Locals("user_id")
	userIDStr, ok := userIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}

// requestActor describes the caller for history rows and audit events.
func requestActor(c *fiber.Ctx) (models.Actor, error) {
	userID, err := parseUserID(c)
	if err != nil {
		return models.Actor{}, err
	}
	role, _ := c.Locals("role").(string)
	requestID, _ := c.Locals("requestid").(string)

	return models.Actor{
		UserID:    userID,
		Role:      role,
		IP:        c.IP(),
		RequestID: requestID,
	}, nil
}

func parseIDParam(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseOptionalID reads a query filter id. Empty means no filter.
func parseOptionalID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

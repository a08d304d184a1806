package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/ClinicAgendaBack/internal/services"
	"github.com/sirupsen/logrus"
)

const (
	codeInternal     = "INTERNAL_ERROR"
	codeUnauthorized = "UNAUTHORIZED"
)

// writeError is the only place an error becomes an HTTP response.
func writeError(c *fiber.Ctx, log *logrus.Entry, err error) error {
	appErr, ok := services.AsAppError(err)
	if !ok {
		if log != nil {
			requestID, _ := c.Locals("requestid").(string)
			log.WithError(err).WithFields(logrus.Fields{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": requestID,
			}).Error("request failed")
		}
		return respondError(c, fiber.StatusInternalServerError, codeInternal, "internal server error", nil)
	}

	return respondError(c, statusFor(appErr), appErr.Code, appErr.Message, appErr.Meta)
}

func statusFor(err *services.AppError) int {
	switch err.Type {
	case services.ErrorTypeValidation, services.ErrorTypeInsufficientSlots:
		return fiber.StatusBadRequest
	case services.ErrorTypeNotFound:
		return fiber.StatusNotFound
	case services.ErrorTypeForbidden:
		return fiber.StatusForbidden
	case services.ErrorTypeConflict:
		switch err.Code {
		case services.CodeOverlap, services.CodeAlreadyPaid:
			return fiber.StatusBadRequest
		default:
			return fiber.StatusConflict
		}
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, status int, code, message string, meta map[string]any) error {
	body := fiber.Map{"code": code, "message": message}
	if len(meta) > 0 {
		body["meta"] = meta
	}
	return c.Status(status).JSON(fiber.Map{"error": body})
}

func badRequest(c *fiber.Ctx, message string) error {
	return respondError(c, fiber.StatusBadRequest, services.CodeValidation, message, nil)
}

func invalidToken(c *fiber.Ctx) error {
	return respondError(c, fiber.StatusUnauthorized, codeUnauthorized, "Invalid token", nil)
}

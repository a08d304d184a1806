package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/services"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/sirupsen/logrus"
)

type copaymentApplicationService interface {
	GetConfig(ctx context.Context) (*models.CopaymentConfig, error)
	UpdateConfig(ctx context.Context, actor models.Actor, input services.UpdateCopaymentInput) (*models.CopaymentConfig, error)
}

type ConfigHandler struct {
	copayments copaymentApplicationService
	log        *logrus.Entry
}

func NewConfigHandler(copayments copaymentApplicationService, log *logger.Logger) *ConfigHandler {
	return &ConfigHandler{copayments: copayments, log: log.WithComponent("config_handler")}
}

type updateCopaymentRequest struct {
	Tier1 *int `json:"coseguro1"`
	Tier2 *int `json:"coseguro2"`
}

func (h *ConfigHandler) GetCopayments(c *fiber.Ctx) error {
	cfg, err := h.copayments.GetConfig(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"config": cfg})
}

func (h *ConfigHandler) UpdateCopayments(c *fiber.Ctx) error {
	actor, err := requestActor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req updateCopaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cfg, err := h.copayments.UpdateConfig(c.Context(), actor, services.UpdateCopaymentInput{
		Tier1: req.Tier1,
		Tier2: req.Tier2,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"config": cfg})
}

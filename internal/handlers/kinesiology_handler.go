package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/sirupsen/logrus"
)

type kinesiologyApplicationService interface {
	OrdersForPatient(ctx context.Context, patientID int64) ([]models.KinesiologyOrderProgress, error)
}

type KinesiologyHandler struct {
	service kinesiologyApplicationService
	log     *logrus.Entry
}

func NewKinesiologyHandler(service kinesiologyApplicationService, log *logger.Logger) *KinesiologyHandler {
	return &KinesiologyHandler{service: service, log: log.WithComponent("kinesiology_handler")}
}

func (h *KinesiologyHandler) ListPatientOrders(c *fiber.Ctx) error {
	patientID, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid patient id")
	}

	orders, err := h.service.OrdersForPatient(c.Context(), patientID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/services"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/sirupsen/logrus"
)

type gymPaymentApplicationService interface {
	List(ctx context.Context, query services.GymPaymentQuery) ([]models.GymMonthlyPayment, int, error)
	Collect(ctx context.Context, actor models.Actor, paymentID int64, input services.CollectGymPaymentInput) (*models.GymMonthlyPayment, error)
}

type GymPaymentHandler struct {
	service gymPaymentApplicationService
	log     *logrus.Entry
}

func NewGymPaymentHandler(service gymPaymentApplicationService, log *logger.Logger) *GymPaymentHandler {
	return &GymPaymentHandler{service: service, log: log.WithComponent("gym_payment_handler")}
}

type collectGymPaymentRequest struct {
	PaymentMethod *string `json:"formaPago"`
	PaidAt        *string `json:"fechaPago"`
}

func (h *GymPaymentHandler) ListPayments(c *fiber.Ctx) error {
	patientID, ok := parseOptionalID(c.Query("pacienteId"))
	if !ok {
		return badRequest(c, "pacienteId must be a positive integer")
	}
	page, limit, offset := parsePagination(c)

	payments, total, err := h.service.List(c.Context(), services.GymPaymentQuery{
		PatientID: patientID,
		YearMonth: c.Query("yearMonth"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"items":      payments,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *GymPaymentHandler) CollectPayment(c *fiber.Ctx) error {
	actor, err := requestActor(c)
	if err != nil {
		return invalidToken(c)
	}
	paymentID, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid payment id")
	}

	var req collectGymPaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	payment, err := h.service.Collect(c.Context(), actor, paymentID, services.CollectGymPaymentInput{
		PaymentMethod: req.PaymentMethod,
		PaidAt:        req.PaidAt,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"payment": payment})
}

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/services"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/sirupsen/logrus"
)

type appointmentApplicationService interface {
	Create(ctx context.Context, actor models.Actor, input services.CreateAppointmentInput) (*models.Appointment, error)
	List(ctx context.Context, query services.AppointmentQuery) ([]models.Appointment, int, error)
	Get(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	History(ctx context.Context, appointmentID int64) ([]models.AppointmentHistory, error)
	Update(ctx context.Context, actor models.Actor, appointmentID int64, input services.UpdateAppointmentInput) (*models.Appointment, error)
	Cancel(ctx context.Context, actor models.Actor, appointmentID int64) (*models.Appointment, error)
	Charge(ctx context.Context, actor models.Actor, appointmentID int64) (*models.Appointment, error)
}

type bulkApplicationService interface {
	Preview(ctx context.Context, req services.BulkRequest) (*services.BulkPreview, error)
	Confirm(ctx context.Context, actor models.Actor, req services.BulkRequest) (*services.BulkResult, error)
}

type AppointmentHandler struct {
	service appointmentApplicationService
	bulk    bulkApplicationService
	log     *logrus.Entry
}

func NewAppointmentHandler(
	service appointmentApplicationService,
	bulk bulkApplicationService,
	log *logger.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		bulk:    bulk,
		log:     log.WithComponent("appointment_handler"),
	}
}

type createAppointmentRequest struct {
	PatientID   int64   `json:"pacienteId"`
	SpecialtyID int64   `json:"especialidadId"`
	StaffID     *int64  `json:"profesionalId"`
	Date        string  `json:"fecha"`
	StartClock  string  `json:"horaInicio"`
	Notes       *string `json:"notas"`
}

type updateAppointmentRequest struct {
	Status *string `json:"estado"`
	Notes  *string `json:"notas"`
}

type bulkAppointmentRequest struct {
	PatientID     int64   `json:"pacienteId"`
	SpecialtyID   int64   `json:"especialidadId"`
	StaffID       *int64  `json:"profesionalId"`
	From          string  `json:"desde"`
	To            string  `json:"hasta"`
	WindowStart   string  `json:"horaDesde"`
	WindowEnd     string  `json:"horaHasta"`
	Weekdays      []int   `json:"diasSemana"`
	Status        string  `json:"estado"`
	Notes         *string `json:"notas"`
	GymMonthlyFee *int    `json:"importeMensualGimnasio"`
	OrderNumber   *int    `json:"numeroOrden"`
	SessionCount  *int    `json:"cantidadSesiones"`
}

func (r bulkAppointmentRequest) toService() services.BulkRequest {
	return services.BulkRequest{
		PatientID:     r.PatientID,
		SpecialtyID:   r.SpecialtyID,
		StaffID:       r.StaffID,
		From:          r.From,
		To:            r.To,
		WindowStart:   r.WindowStart,
		WindowEnd:     r.WindowEnd,
		Weekdays:      r.Weekdays,
		Status:        r.Status,
		Notes:         r.Notes,
		GymMonthlyFee: r.GymMonthlyFee,
		OrderNumber:   r.OrderNumber,
		SessionCount:  r.SessionCount,
	}
}

func (h *AppointmentHandler) ListAppointments(c *fiber.Ctx) error {
	patientID, ok := parseOptionalID(c.Query("pacienteId"))
	if !ok {
		return badRequest(c, "pacienteId must be a positive integer")
	}
	specialtyID, ok := parseOptionalID(c.Query("especialidadId"))
	if !ok {
		return badRequest(c, "especialidadId must be a positive integer")
	}
	staffID, ok := parseOptionalID(c.Query("profesionalId"))
	if !ok {
		return badRequest(c, "profesionalId must be a positive integer")
	}
	page, limit, offset := parsePagination(c)

	appointments, total, err := h.service.List(c.Context(), services.AppointmentQuery{
		From:        c.Query("desde"),
		To:          c.Query("hasta"),
		PatientID:   patientID,
		SpecialtyID: specialtyID,
		StaffID:     staffID,
		Status:      c.Query("estado"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"items":      appointments,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	appointmentID, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid appointment id")
	}

	appointment, err := h.service.Get(c.Context(), appointmentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) GetHistory(c *fiber.Ctx) error {
	appointmentID, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid appointment id")
	}

	history, err := h.service.History(c.Context(), appointmentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"history": history})
}

func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	actor, err := requestActor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req createAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.PatientID <= 0 || req.SpecialtyID <= 0 {
		return badRequest(c, "pacienteId and especialidadId are required")
	}

	appointment, err := h.service.Create(c.Context(), actor, services.CreateAppointmentInput{
		PatientID:   req.PatientID,
		SpecialtyID: req.SpecialtyID,
		StaffID:     req.StaffID,
		Date:        req.Date,
		StartClock:  req.StartClock,
		Notes:       req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) UpdateAppointment(c *fiber.Ctx) error {
	actor, err := requestActor(c)
	if err != nil {
		return invalidToken(c)
	}
	appointmentID, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid appointment id")
	}

	var req updateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Status == nil && req.Notes == nil {
		return badRequest(c, "estado or notas is required")
	}

	appointment, err := h.service.Update(c.Context(), actor, appointmentID, services.UpdateAppointmentInput{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) CancelAppointment(c *fiber.Ctx) error {
	actor, err := requestActor(c)
	if err != nil {
		return invalidToken(c)
	}
	appointmentID, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid appointment id")
	}

	appointment, err := h.service.Cancel(c.Context(), actor, appointmentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) ChargeAppointment(c *fiber.Ctx) error {
	actor, err := requestActor(c)
	if err != nil {
		return invalidToken(c)
	}
	appointmentID, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid appointment id")
	}

	appointment, err := h.service.Charge(c.Context(), actor, appointmentID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) PreviewBulk(c *fiber.Ctx) error {
	var req bulkAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.PatientID <= 0 || req.SpecialtyID <= 0 {
		return badRequest(c, "pacienteId and especialidadId are required")
	}

	preview, err := h.bulk.Preview(c.Context(), req.toService())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(preview)
}

func (h *AppointmentHandler) ConfirmBulk(c *fiber.Ctx) error {
	actor, err := requestActor(c)
	if err != nil {
		return invalidToken(c)
	}

	var req bulkAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.PatientID <= 0 || req.SpecialtyID <= 0 {
		return badRequest(c, "pacienteId and especialidadId are required")
	}

	result, err := h.bulk.Confirm(c.Context(), actor, req.toService())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

package routes

import (
	"context"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saeid-a/ClinicAgendaBack/internal/config"
	"github.com/saeid-a/ClinicAgendaBack/internal/handlers"
	"github.com/saeid-a/ClinicAgendaBack/internal/middleware"
	"github.com/saeid-a/ClinicAgendaBack/internal/notification"
	"github.com/saeid-a/ClinicAgendaBack/internal/repository"
	"github.com/saeid-a/ClinicAgendaBack/internal/services"
	agendaws "github.com/saeid-a/ClinicAgendaBack/internal/websocket"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
)

// Dependencies are the long-lived pieces main owns and shuts down.
type Dependencies struct {
	Config     *config.Config
	DB         *pgxpool.Pool
	Log        *logger.Logger
	Hub        *agendaws.Hub
	Dispatcher *notification.Dispatcher
}

func RegisterRoutes(app *fiber.App, deps Dependencies) error {
	cfg := deps.Config
	db := deps.DB
	log := deps.Log

	auditRepo := repository.NewAuditRepository(db)
	copaymentConfigRepo := repository.NewCopaymentConfigRepository(db)
	gymPaymentRepo := repository.NewGymPaymentRepository(db)

	mailer := notification.NewMailer(cfg, log)
	notifier := notification.NewAppointmentNotifier(deps.Dispatcher, mailer, deps.Hub, cfg.ClinicName, cfg.FrontendURL, log)
	auditRecorder := notification.NewAuditRecorder(auditRepo, deps.Dispatcher, log)

	appointmentService := services.NewAppointmentService(db, notifier, auditRecorder)
	bulkService := services.NewBulkService(db, notifier, auditRecorder)
	gymPaymentService := services.NewGymPaymentService(gymPaymentRepo, auditRecorder)
	copaymentService := services.NewCopaymentService(copaymentConfigRepo, auditRecorder)
	kinesiologyService := services.NewKinesiologyService(db)

	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, bulkService, log)
	gymPaymentHandler := handlers.NewGymPaymentHandler(gymPaymentService, log)
	configHandler := handlers.NewConfigHandler(copaymentService, log)
	kinesiologyHandler := handlers.NewKinesiologyHandler(kinesiologyService, log)
	agendaHandler := handlers.NewAgendaHandler(deps.Hub, cfg.JWTSecret)

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if err := registerDocsRoutes(app, cfg); err != nil {
		return err
	}

	api := app.Group("/api")

	// The websocket feed authenticates with a query token, so it is registered ahead of
	// the header-based group below and ends the chain itself.
	api.Use("/v1/ws", agendaHandler.WebSocketAuth)
	api.Get("/v1/ws/agenda", websocket.New(agendaHandler.HandleWebSocket))

	v1 := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))
	staffOnly := middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleReception)

	v1.Get("/me", handlers.Me)

	appointments := v1.Group("/appointments")
	appointments.Get("", appointmentHandler.ListAppointments)
	appointments.Post("", appointmentHandler.CreateAppointment)
	appointments.Post("/bulk/preview", appointmentHandler.PreviewBulk)
	appointments.Post("/bulk/confirm", appointmentHandler.ConfirmBulk)
	appointments.Get("/:id", appointmentHandler.GetAppointment)
	appointments.Put("/:id", appointmentHandler.UpdateAppointment)
	appointments.Delete("/:id", appointmentHandler.CancelAppointment)
	appointments.Get("/:id/history", appointmentHandler.GetHistory)
	appointments.Post("/:id/charge", staffOnly, appointmentHandler.ChargeAppointment)

	gymPayments := v1.Group("/gym-payments", staffOnly)
	gymPayments.Get("", gymPaymentHandler.ListPayments)
	gymPayments.Post("/:id/collect", gymPaymentHandler.CollectPayment)

	v1.Get("/patients/:id/kinesiology-orders", staffOnly, kinesiologyHandler.ListPatientOrders)

	settings := v1.Group("/config")
	settings.Get("/copayments", configHandler.GetCopayments)
	settings.Put("/copayments", staffOnly, configHandler.UpdateCopayments)

	return nil
}

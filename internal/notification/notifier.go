package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/sirupsen/logrus"
)

type agendaPublisher interface {
	Publish(event models.AgendaEvent)
}

type AppointmentNotifier struct {
	dispatcher  enqueuer
	mailer      Mailer
	feed        agendaPublisher
	clinicName  string
	frontendURL string
	log         *logrus.Entry
	now         func() time.Time
}

func NewAppointmentNotifier(
	dispatcher enqueuer,
	mailer Mailer,
	feed agendaPublisher,
	clinicName string,
	frontendURL string,
	log *logger.Logger,
) *AppointmentNotifier {
	return &AppointmentNotifier{
		dispatcher:  dispatcher,
		mailer:      mailer,
		feed:        feed,
		clinicName:  clinicName,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log.WithComponent("notifier"),
		now:         time.Now,
	}
}

func (n *AppointmentNotifier) AppointmentCreated(_ models.Actor, appointment models.Appointment) {
	n.publish(models.AgendaAppointmentCreated, []models.Appointment{appointment}, "")
	n.email("email.appointment_created", n.createdMessage(appointment))
}

func (n *AppointmentNotifier) AppointmentUpdated(
	_ models.Actor,
	appointment models.Appointment,
	previous models.AppointmentStatus,
) {
	n.publish(models.AgendaAppointmentUpdated, []models.Appointment{appointment}, previous)
	n.email("email.appointment_updated", n.updatedMessage(appointment, previous))
}

func (n *AppointmentNotifier) AppointmentCancelled(
	_ models.Actor,
	appointment models.Appointment,
	previous models.AppointmentStatus,
) {
	n.publish(models.AgendaAppointmentCancelled, []models.Appointment{appointment}, previous)
	n.email("email.appointment_updated", n.updatedMessage(appointment, previous))
}

// AppointmentsBulkCreated only refreshes the live agenda; bulk bookings send no email.
func (n *AppointmentNotifier) AppointmentsBulkCreated(_ models.Actor, appointments []models.Appointment) {
	if len(appointments) == 0 {
		return
	}
	n.publish(models.AgendaBulkCreated, appointments, "")
}

func (n *AppointmentNotifier) publish(
	kind models.AgendaEventType,
	appointments []models.Appointment,
	previous models.AppointmentStatus,
) {
	if n.feed == nil {
		return
	}
	first := appointments[0]
	n.feed.Publish(models.AgendaEvent{
		Type:           kind,
		SpecialtyID:    first.SpecialtyID,
		StaffID:        first.StaffID,
		Appointments:   appointments,
		PreviousStatus: previous.Public(),
		OccurredAt:     n.now().UTC(),
	})
}

func (n *AppointmentNotifier) email(kind string, msg Message) {
	if len(msg.To) == 0 {
		n.log.WithFields(logrus.Fields{"kind": kind, "subject": msg.Subject}).Info("email skipped: no recipients")
		return
	}
	n.dispatcher.Enqueue(kind, func(ctx context.Context) error {
		return n.mailer.Send(ctx, msg)
	})
}

func recipients(appointment models.Appointment) []string {
	to := make([]string, 0, 2)
	if appointment.Patient != nil && appointment.Patient.Email != nil && strings.TrimSpace(*appointment.Patient.Email) != "" {
		to = append(to, strings.TrimSpace(*appointment.Patient.Email))
	}
	if appointment.Staff != nil && appointment.Staff.Email != nil && strings.TrimSpace(*appointment.Staff.Email) != "" {
		to = append(to, strings.TrimSpace(*appointment.Staff.Email))
	}
	return to
}

func (n *AppointmentNotifier) subject(action string, appointment models.Appointment) string {
	specialty := "Especialidad"
	if appointment.Specialty != nil && appointment.Specialty.Name != "" {
		specialty = appointment.Specialty.Name
	}
	return fmt.Sprintf("[%s] Appointment %s - %s - %s", n.clinicName, action, appointment.Patient.DisplayName(), specialty)
}

func (n *AppointmentNotifier) body(appointment models.Appointment) string {
	lines := []string{n.clinicName, ""}
	lines = append(lines, "Paciente: "+appointment.Patient.DisplayName())
	if appointment.Specialty != nil {
		lines = append(lines, "Especialidad: "+appointment.Specialty.Name)
	}
	if appointment.Staff != nil && appointment.Staff.Name != "" {
		lines = append(lines, "Profesional: "+appointment.Staff.Name)
	}
	lines = append(lines,
		"Fecha: "+models.FormatDate(appointment.StartAt),
		"Horario: "+models.FormatClock(appointment.StartAt)+" - "+models.FormatClock(appointment.EndAt),
		"Estado: "+string(appointment.Status.Public()),
		"",
		"Ver agenda: "+n.frontendURL+"/agenda",
	)
	return strings.Join(lines, "\n")
}

func (n *AppointmentNotifier) createdMessage(appointment models.Appointment) Message {
	return Message{
		To:      recipients(appointment),
		Subject: n.subject("created", appointment),
		Body:    n.body(appointment) + "\n\nSe registró un nuevo turno.",
	}
}

func (n *AppointmentNotifier) updatedMessage(appointment models.Appointment, previous models.AppointmentStatus) Message {
	detail := "Turno actualizado"
	if previous != "" && previous.Public() != appointment.Status.Public() {
		detail = fmt.Sprintf("Cambio de estado: %s -> %s", previous.Public(), appointment.Status.Public())
	}
	return Message{
		To:      recipients(appointment),
		Subject: n.subject("updated", appointment),
		Body:    n.body(appointment) + "\n\n" + detail,
	}
}

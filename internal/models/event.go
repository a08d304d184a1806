package models

import "time"

type AgendaEventType string

const (
	AgendaAppointmentCreated   AgendaEventType = "appointment.created"
	AgendaAppointmentUpdated   AgendaEventType = "appointment.updated"
	AgendaAppointmentCancelled AgendaEventType = "appointment.cancelled"
	AgendaBulkCreated          AgendaEventType = "appointments.bulk_created"
)

// AgendaEvent is pushed to staff watching the live agenda.
type AgendaEvent struct {
	Type           AgendaEventType   `json:"type"`
	SpecialtyID    int64             `json:"especialidadId"`
	StaffID        *int64            `json:"profesionalId,omitempty"`
	Appointments   []Appointment     `json:"turnos"`
	PreviousStatus AppointmentStatus `json:"estadoAnterior,omitempty"`
	OccurredAt     time.Time         `json:"timestamp"`
}

package models

import (
	"encoding/json"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	// StatusNoShow only exists in stored data; the API reports it as cancelled.
	StatusNoShow AppointmentStatus = "no_show"
)

// ParseAppointmentStatus accepts the API values and the clinic's Spanish vocabulary.
func ParseAppointmentStatus(value string) (AppointmentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending", "pendiente":
		return StatusPending, true
	case "confirm", "confirmed", "confirmado":
		return StatusConfirmed, true
	case "complete", "completed", "realizado":
		return StatusCompleted, true
	case "cancel", "cancelled", "canceled", "cancelado":
		return StatusCancelled, true
	default:
		return "", false
	}
}

func (s AppointmentStatus) Public() AppointmentStatus {
	if s == StatusNoShow {
		return StatusCancelled
	}
	return s
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// Stored returns every stored status that maps to s at the API boundary.
func (s AppointmentStatus) Stored() []AppointmentStatus {
	if s == StatusCancelled {
		return []AppointmentStatus{StatusCancelled, StatusNoShow}
	}
	return []AppointmentStatus{s}
}

type Appointment struct {
	ID                 int64             `json:"id"`
	PatientID          int64             `json:"pacienteId"`
	SpecialtyID        int64             `json:"especialidadId"`
	StaffID            *int64            `json:"profesionalId"`
	StartAt            time.Time         `json:"startAt"`
	EndAt              time.Time         `json:"endAt"`
	Status             AppointmentStatus `json:"-"`
	Notes              *string           `json:"notas"`
	CopaymentAmount    int               `json:"importeCoseguro"`
	Billed             bool              `json:"cobrado"`
	BilledAt           *time.Time        `json:"cobradoAt"`
	BilledBy           *int64            `json:"cobradoPorId"`
	KinesiologyOrderID *int64            `json:"ordenKinesiologiaId"`
	SessionNumber      *int              `json:"sesionNro"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`

	Patient   *PatientSummary   `json:"paciente,omitempty"`
	Specialty *SpecialtySummary `json:"especialidad,omitempty"`
	Staff     *StaffSummary     `json:"profesional,omitempty"`
}

func (a Appointment) MarshalJSON() ([]byte, error) {
	type appointmentJSON Appointment
	return json.Marshal(struct {
		appointmentJSON
		Estado     AppointmentStatus `json:"estado"`
		Fecha      string            `json:"fecha"`
		HoraInicio string            `json:"horaInicio"`
		HoraFin    string            `json:"horaFin"`
	}{
		appointmentJSON: appointmentJSON(a),
		Estado:          a.Status.Public(),
		Fecha:           FormatDate(a.StartAt),
		HoraInicio:      FormatClock(a.StartAt),
		HoraFin:         FormatClock(a.EndAt),
	})
}

type AppointmentHistory struct {
	ID             int64             `json:"id"`
	AppointmentID  int64             `json:"turnoId"`
	PreviousStatus AppointmentStatus `json:"estadoAnterior"`
	NewStatus      AppointmentStatus `json:"estadoNuevo"`
	ChangedBy      *int64            `json:"usuarioId"`
	ChangedAt      time.Time         `json:"fecha"`
}

func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func FormatClock(t time.Time) string {
	return t.UTC().Format("15:04")
}

package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/repository"
)

// txDB is satisfied by *pgxpool.Pool.
type txDB interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type catalogReader interface {
	GetPatient(ctx context.Context, patientID int64) (*models.Patient, error)
	GetSpecialty(ctx context.Context, specialtyID int64) (*models.Specialty, error)
	GetStaff(ctx context.Context, staffID int64) (*models.Staff, error)
}

// bookingNotifier receives committed changes. Implementations must not block the caller.
type bookingNotifier interface {
	AppointmentCreated(actor models.Actor, appointment models.Appointment)
	AppointmentUpdated(actor models.Actor, appointment models.Appointment, previous models.AppointmentStatus)
	AppointmentCancelled(actor models.Actor, appointment models.Appointment, previous models.AppointmentStatus)
	AppointmentsBulkCreated(actor models.Actor, appointments []models.Appointment)
}

// auditRecorder is best effort: failures are logged by the implementation and never reach
// the request.
type auditRecorder interface {
	Record(actor models.Actor, action, entity, entityID string, payload map[string]any)
}

type noopNotifier struct{}

func (noopNotifier) AppointmentCreated(models.Actor, models.Appointment) {}

func (noopNotifier) AppointmentUpdated(models.Actor, models.Appointment, models.AppointmentStatus) {}

func (noopNotifier) AppointmentCancelled(models.Actor, models.Appointment, models.AppointmentStatus) {
}

func (noopNotifier) AppointmentsBulkCreated(models.Actor, []models.Appointment) {}

type noopAudit struct{}

func (noopAudit) Record(models.Actor, string, string, string, map[string]any) {}

func orNoopNotifier(n bookingNotifier) bookingNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func orNoopAudit(a auditRecorder) auditRecorder {
	if a == nil {
		return noopAudit{}
	}
	return a
}

// bookingParties are the catalog rows every booking references.
type bookingParties struct {
	Patient   *models.Patient
	Specialty *models.Specialty
	Staff     *models.Staff
}

func (p *bookingParties) decorate(appointment *models.Appointment) {
	appointment.Patient = p.Patient.Summary()
	appointment.Specialty = p.Specialty.Summary()
	if p.Staff != nil {
		appointment.Staff = p.Staff.Summary()
	}
}

func loadBookingParties(
	ctx context.Context,
	catalog catalogReader,
	patientID int64,
	specialtyID int64,
	staffID *int64,
) (*bookingParties, error) {
	if patientID <= 0 {
		return nil, NewValidationError(CodeValidation, "pacienteId is required")
	}
	if specialtyID <= 0 {
		return nil, NewValidationError(CodeValidation, "especialidadId is required")
	}
	if staffID != nil && *staffID <= 0 {
		return nil, NewValidationError(CodeValidation, "profesionalId must be positive")
	}

	patient, err := catalog.GetPatient(ctx, patientID)
	if err != nil {
		return nil, notFoundOr(err, "patient not found")
	}
	if !patient.Active {
		return nil, NewValidationError(CodePatientInactive, "patient is not active")
	}

	specialty, err := catalog.GetSpecialty(ctx, specialtyID)
	if err != nil {
		return nil, notFoundOr(err, "specialty not found")
	}
	if !specialty.Active {
		return nil, NewValidationError(CodeSpecialtyInactive, "specialty is not active")
	}
	if specialty.SlotDurationMinutes <= 0 {
		return nil, NewValidationError(CodeValidation, "specialty has no slot duration")
	}

	parties := &bookingParties{Patient: patient, Specialty: specialty}
	if staffID != nil {
		staff, err := catalog.GetStaff(ctx, *staffID)
		if err != nil {
			return nil, notFoundOr(err, "staff member not found")
		}
		parties.Staff = staff
	}
	return parties, nil
}

// notFoundOr turns repository sentinels into domain errors and passes anything else through.
func notFoundOr(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &AppError{Type: ErrorTypeNotFound, Code: CodeNotFound, Message: message, Cause: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &AppError{Type: ErrorTypeConflict, Code: CodeDuplicate, Message: "record already exists", Cause: err}
	default:
		return err
	}
}

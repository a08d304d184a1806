package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/metrics"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/repository"
	"github.com/saeid-a/ClinicAgendaBack/internal/scheduling"
)

type AppointmentService struct {
	db       txDB
	notifier bookingNotifier
	audit    auditRecorder
	now      func() time.Time
}

func NewAppointmentService(db txDB, notifier bookingNotifier, audit auditRecorder) *AppointmentService {
	return &AppointmentService{
		db:       db,
		notifier: orNoopNotifier(notifier),
		audit:    orNoopAudit(audit),
		now:      time.Now,
	}
}

type CreateAppointmentInput struct {
	PatientID   int64
	SpecialtyID int64
	StaffID     *int64
	Date        string
	StartClock  string
	Notes       *string
}

// Create books one appointment on the default path. The overlap check runs in the same
// transaction right before the insert.
func (s *AppointmentService) Create(
	ctx context.Context,
	actor models.Actor,
	input CreateAppointmentInput,
) (*models.Appointment, error) {
	start, err := scheduling.At(input.Date, input.StartClock)
	if err != nil {
		return nil, NewValidationError(CodeValidation, err.Error())
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	parties, err := loadBookingParties(
		ctx,
		repository.NewCatalogRepository(tx),
		input.PatientID,
		input.SpecialtyID,
		input.StaffID,
	)
	if err != nil {
		return nil, rejected(err)
	}

	slot := scheduling.SlotOf(start, parties.Specialty.SlotDurationMinutes)
	txAppointmentRepo := repository.NewAppointmentRepository(tx)
	overlap, err := txAppointmentRepo.HasOverlap(ctx, input.SpecialtyID, input.StaffID, slot)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, rejected(NewConflictError(CodeOverlap, "the slot overlaps an existing appointment"))
	}

	resolver := NewCopaymentResolver(repository.NewCopaymentConfigRepository(tx))
	copayment, err := resolver.Resolve(ctx, parties.Patient, parties.Specialty)
	if err != nil {
		return nil, err
	}

	appointment, err := txAppointmentRepo.Create(ctx, repository.CreateAppointmentInput{
		PatientID:       input.PatientID,
		SpecialtyID:     input.SpecialtyID,
		StaffID:         input.StaffID,
		StartAt:         slot.Start,
		EndAt:           slot.End,
		Status:          models.StatusPending,
		Notes:           trimNotes(input.Notes),
		CopaymentAmount: copayment,
	})
	if err != nil {
		return nil, notFoundOr(err, "appointment references a missing record")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	parties.decorate(appointment)
	metrics.AppointmentsCreated("single", string(PolicyFor(parties.Specialty).Category), 1)
	s.notifier.AppointmentCreated(actor, *appointment)
	s.audit.Record(actor, "APPOINTMENT_CREATED", "appointment", formatID(appointment.ID), map[string]any{
		"pacienteId":     appointment.PatientID,
		"especialidadId": appointment.SpecialtyID,
		"startAt":        appointment.StartAt,
	})
	return appointment, nil
}

type AppointmentQuery struct {
	From        string
	To          string
	PatientID   int64
	SpecialtyID int64
	StaffID     int64
	Status      string
	Limit       int
	Offset      int
}

// List returns one page of appointments ordered by start, plus the total matching count.
// From and To are inclusive calendar dates.
func (s *AppointmentService) List(ctx context.Context, query AppointmentQuery) ([]models.Appointment, int, error) {
	filter := repository.AppointmentListFilter{
		PatientID:   query.PatientID,
		SpecialtyID: query.SpecialtyID,
		StaffID:     query.StaffID,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}

	if strings.TrimSpace(query.From) != "" {
		from, err := scheduling.ParseDate(query.From)
		if err != nil {
			return nil, 0, NewValidationError(CodeValidation, "desde: "+err.Error())
		}
		filter.From = &from
	}
	if strings.TrimSpace(query.To) != "" {
		to, err := scheduling.ParseDate(query.To)
		if err != nil {
			return nil, 0, NewValidationError(CodeValidation, "hasta: "+err.Error())
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, 0, NewValidationError(CodeValidation, scheduling.ErrInvalidDateRange.Error())
	}
	if strings.TrimSpace(query.Status) != "" {
		status, err := parseRequestedStatus(query.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Statuses = status.Stored()
	}

	appointmentRepo := repository.NewAppointmentRepository(s.db)
	total, err := appointmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	appointments, err := appointmentRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

func (s *AppointmentService) Get(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	appointment, err := repository.NewAppointmentRepository(s.db).GetByID(ctx, appointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment not found")
	}
	return appointment, nil
}

func (s *AppointmentService) History(ctx context.Context, appointmentID int64) ([]models.AppointmentHistory, error) {
	if _, err := s.Get(ctx, appointmentID); err != nil {
		return nil, err
	}
	return repository.NewHistoryRepository(s.db).ListByAppointment(ctx, appointmentID)
}

type UpdateAppointmentInput struct {
	Status *string
	Notes  *string
}

// Update applies a status change and/or new notes. A request that changes nothing returns
// the appointment untouched and notifies nobody.
func (s *AppointmentService) Update(
	ctx context.Context,
	actor models.Actor,
	appointmentID int64,
	input UpdateAppointmentInput,
) (*models.Appointment, error) {
	var requested *models.AppointmentStatus
	if input.Status != nil {
		status, err := parseRequestedStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		requested = &status
	}
	return s.transition(ctx, actor, appointmentID, requested, trimNotes(input.Notes), models.AgendaAppointmentUpdated)
}

// Cancel soft-deletes an appointment. Cancelling twice is a no-op; a completed appointment
// cannot be cancelled.
func (s *AppointmentService) Cancel(ctx context.Context, actor models.Actor, appointmentID int64) (*models.Appointment, error) {
	cancelled := models.StatusCancelled
	return s.transition(ctx, actor, appointmentID, &cancelled, nil, models.AgendaAppointmentCancelled)
}

func (s *AppointmentService) transition(
	ctx context.Context,
	actor models.Actor,
	appointmentID int64,
	requested *models.AppointmentStatus,
	notes *string,
	kind models.AgendaEventType,
) (*models.Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAppointmentRepo := repository.NewAppointmentRepository(tx)
	current, err := txAppointmentRepo.GetByIDForUpdate(ctx, appointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment not found")
	}

	previous := current.Status
	next := previous
	statusChanged := false
	if requested != nil {
		statusChanged, err = NextStatus(previous, *requested)
		if err != nil {
			return nil, rejected(err)
		}
		if statusChanged {
			next = *requested
		}
	}
	notesChanged := notes != nil && (current.Notes == nil || *current.Notes != *notes)

	if !statusChanged && !notesChanged {
		appointment, err := txAppointmentRepo.GetByID(ctx, appointmentID)
		if err != nil {
			return nil, notFoundOr(err, "appointment not found")
		}
		return appointment, nil
	}

	if _, err := txAppointmentRepo.Update(ctx, appointmentID, next, notes); err != nil {
		return nil, notFoundOr(err, "appointment not found")
	}
	if statusChanged {
		if _, err := repository.NewHistoryRepository(tx).Append(ctx, appointmentID, previous, next, actor.UserIDPtr()); err != nil {
			return nil, err
		}
	}
	appointment, err := txAppointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if statusChanged {
		metrics.StatusTransition(string(previous.Public()), string(next))
	}
	if kind == models.AgendaAppointmentCancelled {
		s.notifier.AppointmentCancelled(actor, *appointment, previous)
		s.audit.Record(actor, "APPOINTMENT_CANCELLED", "appointment", formatID(appointmentID), map[string]any{
			"estadoAnterior": previous.Public(),
		})
	} else {
		s.notifier.AppointmentUpdated(actor, *appointment, previous)
	}
	return appointment, nil
}

// Charge marks the appointment billed exactly once, in any status.
func (s *AppointmentService) Charge(ctx context.Context, actor models.Actor, appointmentID int64) (*models.Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAppointmentRepo := repository.NewAppointmentRepository(tx)
	current, err := txAppointmentRepo.GetByIDForUpdate(ctx, appointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment not found")
	}
	if current.Billed {
		return nil, rejected(NewConflictError(CodeAlreadyPaid, "appointment is already charged"))
	}

	if _, err := txAppointmentRepo.MarkBilledIfUnbilled(ctx, appointmentID, actor.UserID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, rejected(NewConflictError(CodeAlreadyPaid, "appointment is already charged"))
		}
		return nil, err
	}
	appointment, err := txAppointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.audit.Record(actor, "APPOINTMENT_CHARGED", "appointment", formatID(appointmentID), map[string]any{
		"importeCoseguro": appointment.CopaymentAmount,
	})
	return appointment, nil
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	return &trimmed
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

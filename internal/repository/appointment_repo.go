package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/scheduling"
)

type CreateAppointmentInput struct {
	PatientID          int64
	SpecialtyID        int64
	StaffID            *int64
	StartAt            time.Time
	EndAt              time.Time
	Status             models.AppointmentStatus
	Notes              *string
	CopaymentAmount    int
	KinesiologyOrderID *int64
	SessionNumber      *int
}

type AppointmentListFilter struct {
	From        *time.Time
	To          *time.Time
	PatientID   int64
	SpecialtyID int64
	StaffID     int64
	Statuses    []models.AppointmentStatus
	Limit       int
	Offset      int
}

type AppointmentRepository struct {
	db DBTX
}

func NewAppointmentRepository(db DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = `
	a.id, a.patient_id, a.specialty_id, a.staff_id, a.start_at, a.end_at, a.status, a.notes,
	a.copayment_amount, a.billed, a.billed_at, a.billed_by, a.kinesiology_order_id,
	a.session_number, a.created_at, a.updated_at`

const appointmentDetailSelect = `
	SELECT` + appointmentColumns + `,
		p.first_name, p.last_name, p.email,
		s.name, s.slot_duration_minutes,
		st.name, st.email
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN specialties s ON s.id = a.specialty_id
	LEFT JOIN staff st ON st.id = a.staff_id`

func scanAppointment(row rowScanner, extra ...any) (*models.Appointment, error) {
	var appointment models.Appointment
	var status string
	dest := []any{
		&appointment.ID,
		&appointment.PatientID,
		&appointment.SpecialtyID,
		&appointment.StaffID,
		&appointment.StartAt,
		&appointment.EndAt,
		&status,
		&appointment.Notes,
		&appointment.CopaymentAmount,
		&appointment.Billed,
		&appointment.BilledAt,
		&appointment.BilledBy,
		&appointment.KinesiologyOrderID,
		&appointment.SessionNumber,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	appointment.Status = models.AppointmentStatus(status)
	appointment.StartAt = appointment.StartAt.UTC()
	appointment.EndAt = appointment.EndAt.UTC()
	return &appointment, nil
}

func scanAppointmentDetail(row rowScanner) (*models.Appointment, error) {
	var patient models.PatientSummary
	var specialty models.SpecialtySummary
	var staffName, staffEmail *string

	appointment, err := scanAppointment(
		row,
		&patient.FirstName,
		&patient.LastName,
		&patient.Email,
		&specialty.Name,
		&specialty.SlotDurationMinutes,
		&staffName,
		&staffEmail,
	)
	if err != nil {
		return nil, err
	}

	patient.ID = appointment.PatientID
	specialty.ID = appointment.SpecialtyID
	appointment.Patient = &patient
	appointment.Specialty = &specialty
	if appointment.StaffID != nil && staffName != nil {
		appointment.Staff = &models.StaffSummary{ID: *appointment.StaffID, Name: *staffName, Email: staffEmail}
	}
	return appointment, nil
}

func (r *AppointmentRepository) Create(
	ctx context.Context,
	input CreateAppointmentInput,
) (*models.Appointment, error) {
	status := input.Status
	if status == "" {
		status = models.StatusPending
	}

	query := `
		INSERT INTO appointments AS a (
			patient_id, specialty_id, staff_id, start_at, end_at, status, notes,
			copayment_amount, kinesiology_order_id, session_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING` + appointmentColumns

	appointment, err := scanAppointment(r.db.QueryRow(
		ctx,
		query,
		input.PatientID,
		input.SpecialtyID,
		input.StaffID,
		input.StartAt.UTC(),
		input.EndAt.UTC(),
		string(status),
		input.Notes,
		input.CopaymentAmount,
		input.KinesiologyOrderID,
		input.SessionNumber,
	))
	if err != nil {
		return nil, translate("create appointment", err)
	}
	return appointment, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	appointment, err := scanAppointmentDetail(r.db.QueryRow(ctx, appointmentDetailSelect+` WHERE a.id = $1`, appointmentID))
	if err != nil {
		return nil, translate("get appointment", err)
	}
	return appointment, nil
}

func (r *AppointmentRepository) GetByIDForUpdate(
	ctx context.Context,
	appointmentID int64,
) (*models.Appointment, error) {
	query := `SELECT` + appointmentColumns + ` FROM appointments a WHERE a.id = $1 FOR UPDATE`
	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, appointmentID))
	if err != nil {
		return nil, translate("lock appointment", err)
	}
	return appointment, nil
}

func buildAppointmentWhere(filter AppointmentListFilter) (string, []any) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.From != nil {
		args = append(args, filter.From.UTC())
		whereParts = append(whereParts, fmt.Sprintf("a.start_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		whereParts = append(whereParts, fmt.Sprintf("a.start_at < $%d", len(args)))
	}
	if filter.PatientID > 0 {
		args = append(args, filter.PatientID)
		whereParts = append(whereParts, fmt.Sprintf("a.patient_id = $%d", len(args)))
	}
	if filter.SpecialtyID > 0 {
		args = append(args, filter.SpecialtyID)
		whereParts = append(whereParts, fmt.Sprintf("a.specialty_id = $%d", len(args)))
	}
	if filter.StaffID > 0 {
		args = append(args, filter.StaffID)
		whereParts = append(whereParts, fmt.Sprintf("a.staff_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		args = append(args, statuses)
		whereParts = append(whereParts, fmt.Sprintf("a.status = ANY($%d)", len(args)))
	}

	return strings.Join(whereParts, " AND "), args
}

func (r *AppointmentRepository) List(
	ctx context.Context,
	filter AppointmentListFilter,
) ([]models.Appointment, error) {
	where, args := buildAppointmentWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY a.start_at ASC, a.id ASC
		LIMIT $%d OFFSET $%d
	`, appointmentDetailSelect, where, len(args)-1, len(args))

	return r.queryDetails(ctx, "list appointments", query, args...)
}

func (r *AppointmentRepository) Count(ctx context.Context, filter AppointmentListFilter) (int, error) {
	where, args := buildAppointmentWhere(filter)
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments a WHERE `+where, args...).Scan(&total); err != nil {
		return 0, translate("count appointments", err)
	}
	return total, nil
}

func (r *AppointmentRepository) ListByOrderIDs(
	ctx context.Context,
	orderIDs []int64,
) (map[int64][]models.Appointment, error) {
	result := make(map[int64][]models.Appointment, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := appointmentDetailSelect + `
		WHERE a.kinesiology_order_id = ANY($1)
		ORDER BY a.start_at ASC, a.id ASC
	`
	appointments, err := r.queryDetails(ctx, "list order appointments", query, orderIDs)
	if err != nil {
		return nil, err
	}
	for _, appointment := range appointments {
		orderID := *appointment.KinesiologyOrderID
		result[orderID] = append(result[orderID], appointment)
	}
	return result, nil
}

func (r *AppointmentRepository) queryDetails(
	ctx context.Context,
	op string,
	query string,
	args ...any,
) ([]models.Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer rows.Close()

	appointments := make([]models.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, translate(op, err)
		}
		appointments = append(appointments, *appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(op, err)
	}
	return appointments, nil
}

// ListBookedSlots returns the spans of active appointments for one specialty and staff pair
// intersecting window. A nil staff id matches appointments without staff.
func (r *AppointmentRepository) ListBookedSlots(
	ctx context.Context,
	specialtyID int64,
	staffID *int64,
	window scheduling.Slot,
) ([]scheduling.Slot, error) {
	query := `
		SELECT start_at, end_at
		FROM appointments
		WHERE specialty_id = $1
		  AND staff_id IS NOT DISTINCT FROM $2
		  AND status NOT IN ('cancelled', 'no_show')
		  AND start_at < $4
		  AND end_at > $3
		ORDER BY start_at ASC
	`
	rows, err := r.db.Query(ctx, query, specialtyID, staffID, window.Start.UTC(), window.End.UTC())
	if err != nil {
		return nil, translate("list booked slots", err)
	}
	defer rows.Close()

	slots := make([]scheduling.Slot, 0)
	for rows.Next() {
		var slot scheduling.Slot
		if err := rows.Scan(&slot.Start, &slot.End); err != nil {
			return nil, translate("list booked slots", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list booked slots", err)
	}
	return slots, nil
}

func (r *AppointmentRepository) HasOverlap(
	ctx context.Context,
	specialtyID int64,
	staffID *int64,
	slot scheduling.Slot,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE specialty_id = $1
			  AND staff_id IS NOT DISTINCT FROM $2
			  AND status NOT IN ('cancelled', 'no_show')
			  AND start_at < $4
			  AND end_at > $3
		)
	`
	var overlap bool
	if err := r.db.QueryRow(ctx, query, specialtyID, staffID, slot.Start.UTC(), slot.End.UTC()).Scan(&overlap); err != nil {
		return false, translate("check overlap", err)
	}
	return overlap, nil
}

// Update writes status and notes. A nil notes pointer keeps the stored notes.
func (r *AppointmentRepository) Update(
	ctx context.Context,
	appointmentID int64,
	status models.AppointmentStatus,
	notes *string,
) (*models.Appointment, error) {
	query := `
		UPDATE appointments AS a
		SET status = $2, notes = COALESCE($3, a.notes), updated_at = NOW()
		WHERE a.id = $1
		RETURNING` + appointmentColumns
	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, appointmentID, string(status), notes))
	if err != nil {
		return nil, translate("update appointment", err)
	}
	return appointment, nil
}

// MarkBilledIfUnbilled sets the billed flag once. ErrNotFound means the row is missing or
// already billed; callers tell the two apart with a prior read.
func (r *AppointmentRepository) MarkBilledIfUnbilled(
	ctx context.Context,
	appointmentID int64,
	billedBy int64,
	billedAt time.Time,
) (*models.Appointment, error) {
	query := `
		UPDATE appointments AS a
		SET billed = TRUE, billed_at = $3, billed_by = $2, updated_at = NOW()
		WHERE a.id = $1 AND a.billed = FALSE
		RETURNING` + appointmentColumns
	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, appointmentID, billedBy, billedAt.UTC()))
	if err != nil {
		return nil, translate("bill appointment", err)
	}
	return appointment, nil
}

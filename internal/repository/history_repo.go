package repository

import (
	"context"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

type HistoryRepository struct {
	db DBTX
}

func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(
	ctx context.Context,
	appointmentID int64,
	previous models.AppointmentStatus,
	next models.AppointmentStatus,
	changedBy *int64,
) (*models.AppointmentHistory, error) {
	query := `
		INSERT INTO appointment_history (appointment_id, previous_status, new_status, changed_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, appointment_id, previous_status, new_status, changed_by, changed_at
	`
	entry, err := scanHistory(r.db.QueryRow(ctx, query, appointmentID, string(previous), string(next), changedBy))
	if err != nil {
		return nil, translate("append history", err)
	}
	return entry, nil
}

func (r *HistoryRepository) ListByAppointment(
	ctx context.Context,
	appointmentID int64,
) ([]models.AppointmentHistory, error) {
	query := `
		SELECT id, appointment_id, previous_status, new_status, changed_by, changed_at
		FROM appointment_history
		WHERE appointment_id = $1
		ORDER BY changed_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, translate("list history", err)
	}
	defer rows.Close()

	entries := make([]models.AppointmentHistory, 0)
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, translate("list history", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list history", err)
	}
	return entries, nil
}

func scanHistory(row rowScanner) (*models.AppointmentHistory, error) {
	var entry models.AppointmentHistory
	var previous, next string
	if err := row.Scan(
		&entry.ID,
		&entry.AppointmentID,
		&previous,
		&next,
		&entry.ChangedBy,
		&entry.ChangedAt,
	); err != nil {
		return nil, err
	}
	entry.PreviousStatus = models.AppointmentStatus(previous)
	entry.NewStatus = models.AppointmentStatus(next)
	return &entry, nil
}

package repository

import (
	"context"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

type KinesiologyOrderRepository struct {
	db DBTX
}

func NewKinesiologyOrderRepository(db DBTX) *KinesiologyOrderRepository {
	return &KinesiologyOrderRepository{db: db}
}

// Upsert creates the order for (patient, number) or updates its contracted session count.
func (r *KinesiologyOrderRepository) Upsert(
	ctx context.Context,
	patientID int64,
	number int,
	sessionCount int,
) (*models.KinesiologyOrder, error) {
	query := `
		INSERT INTO kinesiology_orders (patient_id, order_number, session_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, order_number)
		DO UPDATE SET session_count = EXCLUDED.session_count, updated_at = NOW()
		RETURNING id, patient_id, order_number, session_count, created_at, updated_at
	`
	order, err := scanOrder(r.db.QueryRow(ctx, query, patientID, number, sessionCount))
	if err != nil {
		return nil, translate("upsert kinesiology order", err)
	}
	return order, nil
}

func (r *KinesiologyOrderRepository) ListByPatient(
	ctx context.Context,
	patientID int64,
) ([]models.KinesiologyOrder, error) {
	query := `
		SELECT id, patient_id, order_number, session_count, created_at, updated_at
		FROM kinesiology_orders
		WHERE patient_id = $1
		ORDER BY order_number DESC
	`
	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, translate("list kinesiology orders", err)
	}
	defer rows.Close()

	orders := make([]models.KinesiologyOrder, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, translate("list kinesiology orders", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list kinesiology orders", err)
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*models.KinesiologyOrder, error) {
	var order models.KinesiologyOrder
	if err := row.Scan(
		&order.ID,
		&order.PatientID,
		&order.Number,
		&order.SessionCount,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

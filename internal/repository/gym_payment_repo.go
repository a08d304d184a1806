package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

type GymPaymentListFilter struct {
	PatientID int64
	YearMonth string
	Limit     int
	Offset    int
}

type CollectGymPaymentInput struct {
	PaidBy        int64
	PaidAt        time.Time
	PaymentMethod *models.PaymentMethod
}

type GymPaymentRepository struct {
	db DBTX
}

func NewGymPaymentRepository(db DBTX) *GymPaymentRepository {
	return &GymPaymentRepository{db: db}
}

const gymPaymentColumns = `
	g.id, g.patient_id, g.year_month, g.amount, g.paid, g.paid_at, g.paid_by, g.payment_method,
	g.created_at, g.updated_at`

func scanGymPayment(row rowScanner, extra ...any) (*models.GymMonthlyPayment, error) {
	var payment models.GymMonthlyPayment
	var method *string
	dest := []any{
		&payment.ID,
		&payment.PatientID,
		&payment.YearMonth,
		&payment.Amount,
		&payment.Paid,
		&payment.PaidAt,
		&payment.PaidBy,
		&method,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if method != nil {
		value := models.PaymentMethod(*method)
		payment.PaymentMethod = &value
	}
	return &payment, nil
}

// Ensure creates the month's payment or refreshes its amount. A month already paid is
// returned untouched.
func (r *GymPaymentRepository) Ensure(
	ctx context.Context,
	patientID int64,
	yearMonth string,
	amount int,
) (*models.GymMonthlyPayment, error) {
	query := `
		INSERT INTO gym_monthly_payments AS g (patient_id, year_month, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, year_month)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = NOW()
		WHERE g.paid = FALSE
		RETURNING` + gymPaymentColumns

	payment, err := scanGymPayment(r.db.QueryRow(ctx, query, patientID, yearMonth, amount))
	if err == nil {
		return payment, nil
	}
	if err = translate("ensure gym payment", err); !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// The conflict update was skipped because the month is already paid.
	return r.getByMonth(ctx, patientID, yearMonth)
}

func (r *GymPaymentRepository) getByMonth(
	ctx context.Context,
	patientID int64,
	yearMonth string,
) (*models.GymMonthlyPayment, error) {
	query := `SELECT` + gymPaymentColumns + `
		FROM gym_monthly_payments g
		WHERE g.patient_id = $1 AND g.year_month = $2
	`
	payment, err := scanGymPayment(r.db.QueryRow(ctx, query, patientID, yearMonth))
	if err != nil {
		return nil, translate("get gym payment by month", err)
	}
	return payment, nil
}

func (r *GymPaymentRepository) GetByID(ctx context.Context, paymentID int64) (*models.GymMonthlyPayment, error) {
	query := `SELECT` + gymPaymentColumns + `, p.first_name, p.last_name
		FROM gym_monthly_payments g
		JOIN patients p ON p.id = g.patient_id
		WHERE g.id = $1
	`
	payment, err := scanGymPaymentWithPatient(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		return nil, translate("get gym payment", err)
	}
	return payment, nil
}

func scanGymPaymentWithPatient(row rowScanner) (*models.GymMonthlyPayment, error) {
	var patient models.PatientSummary
	payment, err := scanGymPayment(row, &patient.FirstName, &patient.LastName)
	if err != nil {
		return nil, err
	}
	patient.ID = payment.PatientID
	payment.Patient = &patient
	return payment, nil
}

func buildGymPaymentWhere(filter GymPaymentListFilter) (string, []any) {
	args := []any{}
	whereParts := []string{"TRUE"}
	if filter.PatientID > 0 {
		args = append(args, filter.PatientID)
		whereParts = append(whereParts, fmt.Sprintf("g.patient_id = $%d", len(args)))
	}
	if ym := strings.TrimSpace(filter.YearMonth); ym != "" {
		args = append(args, ym)
		whereParts = append(whereParts, fmt.Sprintf("g.year_month = $%d", len(args)))
	}
	return strings.Join(whereParts, " AND "), args
}

func (r *GymPaymentRepository) List(
	ctx context.Context,
	filter GymPaymentListFilter,
) ([]models.GymMonthlyPayment, error) {
	where, args := buildGymPaymentWhere(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s, p.first_name, p.last_name
		FROM gym_monthly_payments g
		JOIN patients p ON p.id = g.patient_id
		WHERE %s
		ORDER BY g.year_month DESC, g.created_at DESC, g.id DESC
		LIMIT $%d OFFSET $%d
	`, gymPaymentColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("list gym payments", err)
	}
	defer rows.Close()

	payments := make([]models.GymMonthlyPayment, 0)
	for rows.Next() {
		payment, err := scanGymPaymentWithPatient(rows)
		if err != nil {
			return nil, translate("list gym payments", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list gym payments", err)
	}
	return payments, nil
}

func (r *GymPaymentRepository) Count(ctx context.Context, filter GymPaymentListFilter) (int, error) {
	where, args := buildGymPaymentWhere(filter)
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM gym_monthly_payments g WHERE `+where, args...).Scan(&total); err != nil {
		return 0, translate("count gym payments", err)
	}
	return total, nil
}

// MarkPaidIfUnpaid records the collection once. ErrNotFound covers both a missing row and a
// month that was already collected.
func (r *GymPaymentRepository) MarkPaidIfUnpaid(
	ctx context.Context,
	paymentID int64,
	input CollectGymPaymentInput,
) (*models.GymMonthlyPayment, error) {
	var method *string
	if input.PaymentMethod != nil {
		value := string(*input.PaymentMethod)
		method = &value
	}

	query := `
		UPDATE gym_monthly_payments AS g
		SET paid = TRUE, paid_at = $2, paid_by = $3, payment_method = $4, updated_at = NOW()
		WHERE g.id = $1 AND g.paid = FALSE
		RETURNING` + gymPaymentColumns
	payment, err := scanGymPayment(r.db.QueryRow(ctx, query, paymentID, input.PaidAt.UTC(), input.PaidBy, method))
	if err != nil {
		return nil, translate("collect gym payment", err)
	}
	return payment, nil
}

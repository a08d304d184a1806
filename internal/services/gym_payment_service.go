package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/repository"
	"github.com/saeid-a/ClinicAgendaBack/internal/scheduling"
)

type gymPaymentStore interface {
	GetByID(ctx context.Context, paymentID int64) (*models.GymMonthlyPayment, error)
	List(ctx context.Context, filter repository.GymPaymentListFilter) ([]models.GymMonthlyPayment, error)
	Count(ctx context.Context, filter repository.GymPaymentListFilter) (int, error)
	MarkPaidIfUnpaid(
		ctx context.Context,
		paymentID int64,
		input repository.CollectGymPaymentInput,
	) (*models.GymMonthlyPayment, error)
}

type GymPaymentService struct {
	payments gymPaymentStore
	audit    auditRecorder
	now      func() time.Time
}

func NewGymPaymentService(payments gymPaymentStore, audit auditRecorder) *GymPaymentService {
	return &GymPaymentService{payments: payments, audit: orNoopAudit(audit), now: time.Now}
}

type GymPaymentQuery struct {
	PatientID int64
	YearMonth string
	Limit     int
	Offset    int
}

// List returns the newest months first.
func (s *GymPaymentService) List(ctx context.Context, query GymPaymentQuery) ([]models.GymMonthlyPayment, int, error) {
	yearMonth := strings.TrimSpace(query.YearMonth)
	if yearMonth != "" && !scheduling.ValidYearMonth(yearMonth) {
		return nil, 0, NewValidationError(CodeValidation, "yearMonth must use YYYY-MM")
	}

	filter := repository.GymPaymentListFilter{
		PatientID: query.PatientID,
		YearMonth: yearMonth,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	total, err := s.payments.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	payments, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

type CollectGymPaymentInput struct {
	PaymentMethod *string
	PaidAt        *string
}

// Collect records the month as paid. A month can only be collected once.
func (s *GymPaymentService) Collect(
	ctx context.Context,
	actor models.Actor,
	paymentID int64,
	input CollectGymPaymentInput,
) (*models.GymMonthlyPayment, error) {
	collect := repository.CollectGymPaymentInput{PaidBy: actor.UserID, PaidAt: s.now().UTC()}
	if input.PaymentMethod != nil && strings.TrimSpace(*input.PaymentMethod) != "" {
		method, ok := models.ParsePaymentMethod(*input.PaymentMethod)
		if !ok {
			return nil, NewValidationError(CodeValidation, "formaPago is not a known payment method")
		}
		collect.PaymentMethod = &method
	}
	if input.PaidAt != nil && strings.TrimSpace(*input.PaidAt) != "" {
		paidAt, err := parseTimestamp(*input.PaidAt)
		if err != nil {
			return nil, err
		}
		collect.PaidAt = paidAt
	}

	existing, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, notFoundOr(err, "gym payment not found")
	}
	if existing.Paid {
		return nil, rejected(NewConflictError(CodeAlreadyPaid, "gym month is already collected"))
	}

	payment, err := s.payments.MarkPaidIfUnpaid(ctx, paymentID, collect)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, rejected(NewConflictError(CodeAlreadyPaid, "gym month is already collected"))
		}
		return nil, err
	}
	payment.Patient = existing.Patient

	s.audit.Record(actor, "GYM_PAYMENT_COLLECTED", "gym_payment", formatID(paymentID), map[string]any{
		"pacienteId": payment.PatientID,
		"yearMonth":  payment.YearMonth,
		"importe":    payment.Amount,
	})
	return payment, nil
}

// parseTimestamp accepts RFC 3339 or a plain calendar date.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := scheduling.ParseDate(value); err == nil {
		return parsed, nil
	}
	return time.Time{}, NewValidationError(CodeValidation, "fechaPago must be RFC 3339 or YYYY-MM-DD")
}

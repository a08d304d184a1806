package services

import (
	"context"
	"testing"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGymPayments struct {
	payments   map[int64]*models.GymMonthlyPayment
	lastFilter repository.GymPaymentListFilter
	collected  *repository.CollectGymPaymentInput
}

func (s *stubGymPayments) GetByID(_ context.Context, id int64) (*models.GymMonthlyPayment, error) {
	payment, ok := s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (s *stubGymPayments) List(_ context.Context, filter repository.GymPaymentListFilter) ([]models.GymMonthlyPayment, error) {
	s.lastFilter = filter
	result := make([]models.GymMonthlyPayment, 0, len(s.payments))
	for _, payment := range s.payments {
		result = append(result, *payment)
	}
	return result, nil
}

func (s *stubGymPayments) Count(_ context.Context, _ repository.GymPaymentListFilter) (int, error) {
	return len(s.payments), nil
}

func (s *stubGymPayments) MarkPaidIfUnpaid(
	_ context.Context,
	id int64,
	input repository.CollectGymPaymentInput,
) (*models.GymMonthlyPayment, error) {
	payment, ok := s.payments[id]
	if !ok || payment.Paid {
		return nil, repository.ErrNotFound
	}
	s.collected = &input
	payment.Paid = true
	payment.PaidAt = &input.PaidAt
	payment.PaidBy = &input.PaidBy
	payment.PaymentMethod = input.PaymentMethod
	copied := *payment
	copied.Patient = nil
	return &copied, nil
}

func newGymService(store *stubGymPayments, audit *stubAudit) *GymPaymentService {
	service := NewGymPaymentService(store, audit)
	service.now = func() time.Time { return time.Date(2024, 4, 2, 15, 0, 0, 0, time.UTC) }
	return service
}

func TestCollectGymPaymentDefaultsDateAndAudits(t *testing.T) {
	store := &stubGymPayments{payments: map[int64]*models.GymMonthlyPayment{
		5: {ID: 5, PatientID: 10, YearMonth: "2024-04", Amount: 15000, Patient: &models.PatientSummary{ID: 10, LastName: "Lopez"}},
	}}
	audit := &stubAudit{}
	method := "efectivo"

	payment, err := newGymService(store, audit).Collect(context.Background(), models.Actor{UserID: 3}, 5, CollectGymPaymentInput{PaymentMethod: &method})
	require.NoError(t, err)

	assert.True(t, payment.Paid)
	assert.Equal(t, time.Date(2024, 4, 2, 15, 0, 0, 0, time.UTC), *payment.PaidAt)
	assert.Equal(t, int64(3), *payment.PaidBy)
	assert.Equal(t, models.PaymentCash, *payment.PaymentMethod)
	require.NotNil(t, payment.Patient)
	assert.Equal(t, "Lopez", payment.Patient.LastName)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "GYM_PAYMENT_COLLECTED", audit.records[0].action)
}

func TestCollectGymPaymentTwiceIsAlreadyPaid(t *testing.T) {
	store := &stubGymPayments{payments: map[int64]*models.GymMonthlyPayment{
		5: {ID: 5, PatientID: 10, YearMonth: "2024-04", Amount: 15000},
	}}
	service := newGymService(store, &stubAudit{})
	paidAt := "2024-04-01"

	first, err := service.Collect(context.Background(), models.Actor{UserID: 3}, 5, CollectGymPaymentInput{PaidAt: &paidAt})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), *first.PaidAt)

	_, err = service.Collect(context.Background(), models.Actor{UserID: 4}, 5, CollectGymPaymentInput{})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, int64(3), *store.payments[5].PaidBy)
}

func TestCollectGymPaymentValidation(t *testing.T) {
	store := &stubGymPayments{payments: map[int64]*models.GymMonthlyPayment{}}
	service := newGymService(store, &stubAudit{})

	_, err := service.Collect(context.Background(), models.Actor{}, 99, CollectGymPaymentInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	method := "bitcoin"
	_, err = service.Collect(context.Background(), models.Actor{}, 99, CollectGymPaymentInput{PaymentMethod: &method})
	assert.ErrorIs(t, err, ErrValidation)

	bad := "yesterday"
	_, err = service.Collect(context.Background(), models.Actor{}, 99, CollectGymPaymentInput{PaidAt: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListGymPaymentsValidatesYearMonth(t *testing.T) {
	store := &stubGymPayments{payments: map[int64]*models.GymMonthlyPayment{
		1: {ID: 1, YearMonth: "2024-04"},
	}}
	service := newGymService(store, nil)

	_, _, err := service.List(context.Background(), GymPaymentQuery{YearMonth: "2024-13"})
	assert.ErrorIs(t, err, ErrValidation)

	payments, total, err := service.List(context.Background(), GymPaymentQuery{PatientID: 10, YearMonth: " 2024-04 ", Limit: 20})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2024-04", store.lastFilter.YearMonth)
	assert.Equal(t, int64(10), store.lastFilter.PatientID)
}

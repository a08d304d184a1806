package services

import (
	"context"
	"testing"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	orders []models.KinesiologyOrder
}

func (s *stubOrders) ListByPatient(context.Context, int64) ([]models.KinesiologyOrder, error) {
	return s.orders, nil
}

type stubOrderAppointments struct {
	byOrder map[int64][]models.Appointment
	asked   []int64
}

func (s *stubOrderAppointments) ListByOrderIDs(_ context.Context, ids []int64) (map[int64][]models.Appointment, error) {
	s.asked = ids
	return s.byOrder, nil
}

func TestOrdersForPatientBuildsProgress(t *testing.T) {
	appointments := &stubOrderAppointments{byOrder: map[int64][]models.Appointment{
		2: {
			{ID: 1, Status: models.StatusCompleted},
			{ID: 2, Status: models.StatusCompleted},
			{ID: 3, Status: models.StatusPending},
		},
	}}
	service := &KinesiologyService{
		catalog: newStubCatalog(),
		orders: &stubOrders{orders: []models.KinesiologyOrder{
			{ID: 2, PatientID: activePatientID, Number: 8, SessionCount: 10},
			{ID: 1, PatientID: activePatientID, Number: 3, SessionCount: 5},
		}},
		appointments: appointments,
	}

	progress, err := service.OrdersForPatient(context.Background(), activePatientID)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, []int64{2, 1}, appointments.asked)

	assert.Equal(t, 2, progress[0].Consumed)
	assert.Equal(t, 8, progress[0].Pending)
	assert.Len(t, progress[0].Appointments, 3)

	assert.Equal(t, 0, progress[1].Consumed)
	assert.Equal(t, 5, progress[1].Pending)
	assert.NotNil(t, progress[1].Appointments)
}

func TestOrdersForUnknownPatient(t *testing.T) {
	service := &KinesiologyService{catalog: newStubCatalog(), orders: &stubOrders{}, appointments: &stubOrderAppointments{}}

	_, err := service.OrdersForPatient(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

package services

import (
	"context"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/repository"
)

type kinesiologyOrderReader interface {
	ListByPatient(ctx context.Context, patientID int64) ([]models.KinesiologyOrder, error)
}

type orderAppointmentReader interface {
	ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]models.Appointment, error)
}

type KinesiologyService struct {
	catalog      catalogReader
	orders       kinesiologyOrderReader
	appointments orderAppointmentReader
}

func NewKinesiologyService(db repository.DBTX) *KinesiologyService {
	return &KinesiologyService{
		catalog:      repository.NewCatalogRepository(db),
		orders:       repository.NewKinesiologyOrderRepository(db),
		appointments: repository.NewAppointmentRepository(db),
	}
}

// OrdersForPatient lists the patient's orders, newest number first, with their sessions.
func (s *KinesiologyService) OrdersForPatient(
	ctx context.Context,
	patientID int64,
) ([]models.KinesiologyOrderProgress, error) {
	if _, err := s.catalog.GetPatient(ctx, patientID); err != nil {
		return nil, notFoundOr(err, "patient not found")
	}

	orders, err := s.orders.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	orderIDs := make([]int64, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	linked, err := s.appointments.ListByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	progress := make([]models.KinesiologyOrderProgress, 0, len(orders))
	for _, order := range orders {
		progress = append(progress, models.NewKinesiologyOrderProgress(order, linked[order.ID]))
	}
	return progress, nil
}

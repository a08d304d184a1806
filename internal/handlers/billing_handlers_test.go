package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/services"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGymPaymentService struct {
	listResult    []models.GymMonthlyPayment
	listTotal     int
	listErr       error
	collectResult *models.GymMonthlyPayment
	collectErr    error

	lastQuery     services.GymPaymentQuery
	lastActor     models.Actor
	lastPaymentID int64
	lastInput     services.CollectGymPaymentInput
}

func (s *stubGymPaymentService) List(_ context.Context, query services.GymPaymentQuery) ([]models.GymMonthlyPayment, int, error) {
	s.lastQuery = query
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubGymPaymentService) Collect(_ context.Context, actor models.Actor, paymentID int64, input services.CollectGymPaymentInput) (*models.GymMonthlyPayment, error) {
	s.lastActor = actor
	s.lastPaymentID = paymentID
	s.lastInput = input
	return s.collectResult, s.collectErr
}

type stubCopaymentService struct {
	config    *models.CopaymentConfig
	updateErr error
	lastInput services.UpdateCopaymentInput
	lastActor models.Actor
}

func (s *stubCopaymentService) GetConfig(_ context.Context) (*models.CopaymentConfig, error) {
	return s.config, nil
}

func (s *stubCopaymentService) UpdateConfig(_ context.Context, actor models.Actor, input services.UpdateCopaymentInput) (*models.CopaymentConfig, error) {
	s.lastActor = actor
	s.lastInput = input
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.config, nil
}

type stubKinesiologyService struct {
	orders        []models.KinesiologyOrderProgress
	err           error
	lastPatientID int64
}

func (s *stubKinesiologyService) OrdersForPatient(_ context.Context, patientID int64) ([]models.KinesiologyOrderProgress, error) {
	s.lastPatientID = patientID
	return s.orders, s.err
}

func TestListGymPaymentsPassesFilters(t *testing.T) {
	service := &stubGymPaymentService{
		listResult: []models.GymMonthlyPayment{{ID: 1, PatientID: 3, YearMonth: "2023-03", Amount: 15000}},
		listTotal:  1,
	}
	handler := NewGymPaymentHandler(service, logger.Discard())
	app := newAuthedApp("reception", "42")
	app.Get("/gym-payments", handler.ListPayments)

	resp := doJSON(t, app, http.MethodGet, "/gym-payments?pacienteId=3&yearMonth=2023-03&limit=20", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	assert.Equal(t, services.GymPaymentQuery{PatientID: 3, YearMonth: "2023-03", Limit: 20}, service.lastQuery)

	var payload struct {
		Items []models.GymMonthlyPayment `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Items, 1)
	assert.Equal(t, 15000, payload.Items[0].Amount)
}

func TestListGymPaymentsSurfacesValidation(t *testing.T) {
	service := &stubGymPaymentService{listErr: services.NewValidationError(services.CodeValidation, "yearMonth must use YYYY-MM")}
	handler := NewGymPaymentHandler(service, logger.Discard())
	app := newAuthedApp("reception", "42")
	app.Get("/gym-payments", handler.ListPayments)

	resp := doJSON(t, app, http.MethodGet, "/gym-payments?yearMonth=March", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
	payload := decodeError(t, resp)
	assert.Equal(t, "yearMonth must use YYYY-MM", payload.Error.Message)
}

func TestCollectGymPaymentWithoutBody(t *testing.T) {
	service := &stubGymPaymentService{collectResult: &models.GymMonthlyPayment{ID: 5, Paid: true}}
	handler := NewGymPaymentHandler(service, logger.Discard())
	app := newAuthedApp("admin", "42")
	app.Post("/gym-payments/:id/collect", handler.CollectPayment)

	resp := doJSON(t, app, http.MethodPost, "/gym-payments/5/collect", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	assert.Equal(t, int64(5), service.lastPaymentID)
	assert.Nil(t, service.lastInput.PaymentMethod)
	assert.Equal(t, int64(42), service.lastActor.UserID)
}

func TestCollectGymPaymentAlreadyPaid(t *testing.T) {
	service := &stubGymPaymentService{collectErr: services.NewConflictError(services.CodeAlreadyPaid, "month already collected")}
	handler := NewGymPaymentHandler(service, logger.Discard())
	app := newAuthedApp("admin", "42")
	app.Post("/gym-payments/:id/collect", handler.CollectPayment)

	resp := doJSON(t, app, http.MethodPost, "/gym-payments/5/collect", `{"formaPago":"efectivo","fechaPago":"2023-03-10"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
	payload := decodeError(t, resp)
	assert.Equal(t, services.CodeAlreadyPaid, payload.Error.Code)
	require.NotNil(t, service.lastInput.PaymentMethod)
	assert.Equal(t, "efectivo", *service.lastInput.PaymentMethod)
	require.NotNil(t, service.lastInput.PaidAt)
	assert.Equal(t, "2023-03-10", *service.lastInput.PaidAt)
}

func TestUpdateCopaymentsPassesOnlyProvidedTiers(t *testing.T) {
	service := &stubCopaymentService{config: &models.CopaymentConfig{ID: models.CopaymentConfigID, Tier1: 2500, Tier2: 4000}}
	handler := NewConfigHandler(service, logger.Discard())
	app := newAuthedApp("admin", "42")
	app.Put("/config/copayments", handler.UpdateCopayments)

	resp := doJSON(t, app, http.MethodPut, "/config/copayments", `{"coseguro1":2500}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	require.NotNil(t, service.lastInput.Tier1)
	assert.Equal(t, 2500, *service.lastInput.Tier1)
	assert.Nil(t, service.lastInput.Tier2)

	var payload struct {
		Config models.CopaymentConfig `json:"config"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 4000, payload.Config.Tier2)
}

func TestUpdateCopaymentsRejectsNegative(t *testing.T) {
	service := &stubCopaymentService{updateErr: services.NewValidationError(services.CodeValidation, "tier1 must not be negative")}
	handler := NewConfigHandler(service, logger.Discard())
	app := newAuthedApp("admin", "42")
	app.Put("/config/copayments", handler.UpdateCopayments)

	resp := doJSON(t, app, http.MethodPut, "/config/copayments", `{"coseguro1":-1}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestGetCopayments(t *testing.T) {
	service := &stubCopaymentService{config: &models.CopaymentConfig{ID: models.CopaymentConfigID}}
	handler := NewConfigHandler(service, logger.Discard())
	app := newAuthedApp("professional", "42")
	app.Get("/config/copayments", handler.GetCopayments)

	resp := doJSON(t, app, http.MethodGet, "/config/copayments", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestListPatientOrders(t *testing.T) {
	order := models.KinesiologyOrder{ID: 1, PatientID: 3, Number: 5, SessionCount: 10}
	service := &stubKinesiologyService{orders: []models.KinesiologyOrderProgress{
		models.NewKinesiologyOrderProgress(order, nil),
	}}
	handler := NewKinesiologyHandler(service, logger.Discard())
	app := newAuthedApp("reception", "42")
	app.Get("/patients/:id/kinesiology-orders", handler.ListPatientOrders)

	resp := doJSON(t, app, http.MethodGet, "/patients/3/kinesiology-orders", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var payload struct {
		Orders []models.KinesiologyOrderProgress `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Orders, 1)
	assert.Equal(t, 10, payload.Orders[0].Pending)
	assert.Equal(t, int64(3), service.lastPatientID)
}

func TestListPatientOrdersUnknownPatient(t *testing.T) {
	service := &stubKinesiologyService{err: services.NewNotFoundError("patient not found")}
	handler := NewKinesiologyHandler(service, logger.Discard())
	app := newAuthedApp("reception", "42")
	app.Get("/patients/:id/kinesiology-orders", handler.ListPatientOrders)

	resp := doJSON(t, app, http.MethodGet, "/patients/404/kinesiology-orders", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestMeEchoesTokenIdentity(t *testing.T) {
	app := newAuthedApp("admin", "42")
	app.Get("/me", Me)

	resp := doJSON(t, app, http.MethodGet, "/me", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var payload struct {
		User struct {
			ID   int64  `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, int64(42), payload.User.ID)
	assert.Equal(t, "admin", payload.User.Role)
}

func TestMeRejectsMissingIdentity(t *testing.T) {
	app := newAuthedApp("", "")
	app.Get("/me", Me)

	resp := doJSON(t, app, http.MethodGet, "/me", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.StatusCode)
	}
}

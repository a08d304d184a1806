package services

import (
	"context"
	"testing"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/repository"
	"github.com/saeid-a/ClinicAgendaBack/internal/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	patients    map[int64]*models.Patient
	specialties map[int64]*models.Specialty
	staff       map[int64]*models.Staff
}

func (s *stubCatalog) GetPatient(_ context.Context, id int64) (*models.Patient, error) {
	if patient, ok := s.patients[id]; ok {
		return patient, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubCatalog) GetSpecialty(_ context.Context, id int64) (*models.Specialty, error) {
	if specialty, ok := s.specialties[id]; ok {
		return specialty, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubCatalog) GetStaff(_ context.Context, id int64) (*models.Staff, error) {
	if staff, ok := s.staff[id]; ok {
		return staff, nil
	}
	return nil, repository.ErrNotFound
}

type stubBookedSlots struct {
	slots  []scheduling.Slot
	calls  int
	window scheduling.Slot
}

func (s *stubBookedSlots) ListBookedSlots(
	_ context.Context,
	_ int64,
	_ *int64,
	window scheduling.Slot,
) ([]scheduling.Slot, error) {
	s.calls++
	s.window = window
	return s.slots, nil
}

const (
	generalSpecialtyID     int64 = 1
	gymSpecialtyID         int64 = 2
	kinesiologySpecialtyID int64 = 3
	inactiveSpecialtyID    int64 = 4
	activePatientID        int64 = 10
	inactivePatientID      int64 = 11
)

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		patients: map[int64]*models.Patient{
			activePatientID:   {ID: activePatientID, FirstName: "Ana", LastName: "Lopez", Active: true},
			inactivePatientID: {ID: inactivePatientID, FirstName: "Luis", LastName: "Diaz"},
		},
		specialties: map[int64]*models.Specialty{
			generalSpecialtyID:     {ID: generalSpecialtyID, Name: "Traumatologia", SlotDurationMinutes: 30, Category: models.CategoryDefault, Active: true},
			gymSpecialtyID:         {ID: gymSpecialtyID, Name: "Gimnasio", SlotDurationMinutes: 60, Category: models.CategoryGym, Active: true},
			kinesiologySpecialtyID: {ID: kinesiologySpecialtyID, Name: "Kinesiologia", SlotDurationMinutes: 45, Category: models.CategoryKinesiology, Active: true},
			inactiveSpecialtyID:    {ID: inactiveSpecialtyID, Name: "Nutricion", SlotDurationMinutes: 30},
		},
		staff: map[int64]*models.Staff{
			20: {ID: 20, Name: "Dra. Perez", Active: true},
		},
	}
}

// 2024-03-04 is a Monday.
func weekRequest(specialtyID int64) BulkRequest {
	return BulkRequest{
		PatientID:   activePatientID,
		SpecialtyID: specialtyID,
		From:        "2024-03-04",
		To:          "2024-03-10",
		WindowStart: "09:00",
		WindowEnd:   "11:00",
		Weekdays:    []int{1, 3, 5},
	}
}

func TestBuildBulkPlanFlagsAgainstExistingBookings(t *testing.T) {
	booked := &stubBookedSlots{slots: []scheduling.Slot{slotAt(t, "2024-03-04", "09:15", 30)}}

	plan, err := buildBulkPlan(context.Background(), newStubCatalog(), booked, weekRequest(generalSpecialtyID))
	require.NoError(t, err)

	// Three days, four 30 minute slots each.
	assert.Len(t, plan.flagged, 12)
	assert.Equal(t, 1, booked.calls)
	assert.Equal(t, slotAt(t, "2024-03-04", "09:00", 30).Start, booked.window.Start)
	assert.Equal(t, slotAt(t, "2024-03-08", "10:30", 30).End, booked.window.End)

	summary := plan.summary()
	assert.Equal(t, BulkSummary{Total: 12, Conflicts: 2, Creatable: 10, SelectedForCreation: 10}, summary)
	assert.Equal(t, models.StatusPending, plan.status)

	preview := plan.preview()
	require.Len(t, preview.Items, 12)
	assert.True(t, preview.Items[0].Conflict)
	assert.True(t, preview.Items[1].Conflict)
	assert.False(t, preview.Items[2].Conflict)
	assert.Equal(t, "2024-03-04", preview.Items[0].Date)
	assert.Equal(t, "09:00", preview.Items[0].StartClock)
	assert.Equal(t, "09:30", preview.Items[0].EndClock)
	assert.Equal(t, "Lopez", preview.Patient.LastName)
}

func TestBuildBulkPlanKinesiologySkipsOverlapQuery(t *testing.T) {
	booked := &stubBookedSlots{slots: []scheduling.Slot{slotAt(t, "2024-03-04", "09:00", 45)}}
	req := weekRequest(kinesiologySpecialtyID)
	req.OrderNumber = intPtr(7)
	req.SessionCount = intPtr(4)

	plan, err := buildBulkPlan(context.Background(), newStubCatalog(), booked, req)
	require.NoError(t, err)

	assert.Equal(t, 0, booked.calls)
	// 09:00-11:00 fits two 45 minute slots per day.
	assert.Equal(t, BulkSummary{Total: 6, Conflicts: 0, Creatable: 6, SelectedForCreation: 4}, plan.summary())
	assert.Len(t, plan.preview().Items, 4)
}

func TestBuildBulkPlanKinesiologyRequiresOrder(t *testing.T) {
	_, err := buildBulkPlan(context.Background(), newStubCatalog(), &stubBookedSlots{}, weekRequest(kinesiologySpecialtyID))
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeKinesiologyOrder, appErr.Code)
}

func TestBuildBulkPlanValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BulkRequest)
		target error
		code   string
	}{
		{"bad date", func(r *BulkRequest) { r.From = "04/03/2024" }, ErrValidation, CodeValidation},
		{"reversed range", func(r *BulkRequest) { r.From, r.To = r.To, r.From }, ErrValidation, CodeValidation},
		{"range over a year", func(r *BulkRequest) {
			r.From, r.To = "0001-01-01", "9999-12-31"
			r.WindowStart, r.WindowEnd = "00:00", "23:59"
			r.Weekdays = []int{0, 1, 2, 3, 4, 5, 6}
		}, ErrValidation, CodeValidation},
		{"empty window", func(r *BulkRequest) { r.WindowEnd = "09:00" }, ErrValidation, CodeValidation},
		{"bad clock", func(r *BulkRequest) { r.WindowStart = "9:00" }, ErrValidation, CodeValidation},
		{"no weekdays", func(r *BulkRequest) { r.Weekdays = nil }, ErrValidation, CodeValidation},
		{"weekday out of range", func(r *BulkRequest) { r.Weekdays = []int{7} }, ErrValidation, CodeValidation},
		{"completed status", func(r *BulkRequest) { r.Status = "realizado" }, ErrValidation, CodeValidation},
		{"missing patient", func(r *BulkRequest) { r.PatientID = 99 }, ErrNotFound, CodeNotFound},
		{"inactive patient", func(r *BulkRequest) { r.PatientID = inactivePatientID }, ErrValidation, CodePatientInactive},
		{"missing specialty", func(r *BulkRequest) { r.SpecialtyID = 99 }, ErrNotFound, CodeNotFound},
		{"inactive specialty", func(r *BulkRequest) { r.SpecialtyID = inactiveSpecialtyID }, ErrValidation, CodeSpecialtyInactive},
		{"missing staff", func(r *BulkRequest) { r.StaffID = int64Ptr(99) }, ErrNotFound, CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := weekRequest(generalSpecialtyID)
			tt.mutate(&req)

			_, err := buildBulkPlan(context.Background(), newStubCatalog(), &stubBookedSlots{}, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			appErr, ok := AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestBuildBulkPlanNarrowWindowYieldsNoSlots(t *testing.T) {
	req := weekRequest(gymSpecialtyID)
	req.WindowEnd = "09:30"
	booked := &stubBookedSlots{}

	plan, err := buildBulkPlan(context.Background(), newStubCatalog(), booked, req)
	require.NoError(t, err)
	assert.Empty(t, plan.flagged)
	assert.Equal(t, 0, booked.calls)
	assert.Equal(t, BulkSummary{}, plan.summary())
}

func TestBuildBulkPlanKeepsConfirmedStatus(t *testing.T) {
	req := weekRequest(generalSpecialtyID)
	req.Status = "confirmado"

	plan, err := buildBulkPlan(context.Background(), newStubCatalog(), &stubBookedSlots{}, req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, plan.status)
	assert.Equal(t, models.StatusConfirmed, plan.preview().Items[0].Status)
}

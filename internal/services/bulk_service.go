package services

import (
	"context"
	"strings"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/metrics"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/repository"
	"github.com/saeid-a/ClinicAgendaBack/internal/scheduling"
)

type bookedSlotReader interface {
	ListBookedSlots(
		ctx context.Context,
		specialtyID int64,
		staffID *int64,
		window scheduling.Slot,
	) ([]scheduling.Slot, error)
}

// BulkRequest is a recurring booking: every selected weekday in [From, To], back to back
// slots between WindowStart and WindowEnd.
type BulkRequest struct {
	PatientID     int64
	SpecialtyID   int64
	StaffID       *int64
	From          string
	To            string
	WindowStart   string
	WindowEnd     string
	Weekdays      []int
	Status        string
	Notes         *string
	GymMonthlyFee *int
	OrderNumber   *int
	SessionCount  *int
}

type BulkPreviewItem struct {
	PatientID   int64                    `json:"pacienteId"`
	SpecialtyID int64                    `json:"especialidadId"`
	StaffID     *int64                   `json:"profesionalId"`
	StartAt     time.Time                `json:"startAt"`
	EndAt       time.Time                `json:"endAt"`
	Date        string                   `json:"fecha"`
	StartClock  string                   `json:"horaInicio"`
	EndClock    string                   `json:"horaFin"`
	Status      models.AppointmentStatus `json:"estado"`
	Notes       *string                  `json:"notas"`
	Conflict    bool                     `json:"conflict"`
}

type BulkSummary struct {
	Total               int `json:"total"`
	Conflicts           int `json:"conflicts"`
	Creatable           int `json:"creatable"`
	SelectedForCreation int `json:"selectedForCreation"`
}

type BulkPreview struct {
	Patient   *models.PatientSummary   `json:"paciente"`
	Specialty *models.SpecialtySummary `json:"especialidad"`
	Category  models.SpecialtyCategory `json:"categoria"`
	Items     []BulkPreviewItem        `json:"items"`
	Summary   BulkSummary              `json:"summary"`
}

type BulkResult struct {
	CreatedCount     int                  `json:"createdCount"`
	SkippedConflicts int                  `json:"skippedConflicts"`
	TotalRequested   int                  `json:"totalRequested"`
	Created          []models.Appointment `json:"created"`
}

type bulkPlan struct {
	req      BulkRequest
	parties  *bookingParties
	policy   BillingPolicy
	from     time.Time
	to       time.Time
	status   models.AppointmentStatus
	flagged  []scheduling.Candidate
	selected []scheduling.Slot
}

func (p *bulkPlan) summary() BulkSummary {
	conflicts := scheduling.CountConflicts(p.flagged)
	return BulkSummary{
		Total:               len(p.flagged),
		Conflicts:           conflicts,
		Creatable:           len(p.flagged) - conflicts,
		SelectedForCreation: len(p.selected),
	}
}

func (p *bulkPlan) previewItem(slot scheduling.Slot, conflict bool) BulkPreviewItem {
	return BulkPreviewItem{
		PatientID:   p.req.PatientID,
		SpecialtyID: p.req.SpecialtyID,
		StaffID:     p.req.StaffID,
		StartAt:     slot.Start,
		EndAt:       slot.End,
		Date:        models.FormatDate(slot.Start),
		StartClock:  models.FormatClock(slot.Start),
		EndClock:    models.FormatClock(slot.End),
		Status:      p.status,
		Notes:       p.req.Notes,
		Conflict:    conflict,
	}
}

func (p *bulkPlan) preview() *BulkPreview {
	items := make([]BulkPreviewItem, 0, len(p.flagged))
	if p.policy.IsKinesiology() {
		for _, slot := range p.selected {
			items = append(items, p.previewItem(slot, false))
		}
	} else {
		for _, candidate := range p.flagged {
			items = append(items, p.previewItem(candidate.Slot, candidate.Conflict))
		}
	}

	return &BulkPreview{
		Patient:   p.parties.Patient.Summary(),
		Specialty: p.parties.Specialty.Summary(),
		Category:  p.policy.Category,
		Items:     items,
		Summary:   p.summary(),
	}
}

func parseBulkStatus(value string) (models.AppointmentStatus, error) {
	if strings.TrimSpace(value) == "" {
		return models.StatusPending, nil
	}
	status, ok := models.ParseAppointmentStatus(value)
	if !ok || (status != models.StatusPending && status != models.StatusConfirmed) {
		return "", NewValidationError(CodeValidation, "estado must be pendiente or confirmado")
	}
	return status, nil
}

// buildBulkPlan generates the candidate grid and flags it against the bookings already
// stored. It writes nothing.
func buildBulkPlan(
	ctx context.Context,
	catalog catalogReader,
	booked bookedSlotReader,
	req BulkRequest,
) (*bulkPlan, error) {
	from, err := scheduling.ParseDate(req.From)
	if err != nil {
		return nil, NewValidationError(CodeValidation, "desde: "+err.Error())
	}
	to, err := scheduling.ParseDate(req.To)
	if err != nil {
		return nil, NewValidationError(CodeValidation, "hasta: "+err.Error())
	}
	windowStart, err := scheduling.ParseClock(req.WindowStart)
	if err != nil {
		return nil, NewValidationError(CodeValidation, "horaDesde: "+err.Error())
	}
	windowEnd, err := scheduling.ParseClock(req.WindowEnd)
	if err != nil {
		return nil, NewValidationError(CodeValidation, "horaHasta: "+err.Error())
	}
	status, err := parseBulkStatus(req.Status)
	if err != nil {
		return nil, err
	}

	gridReq := scheduling.GridRequest{
		From:        from,
		To:          to,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Weekdays:    req.Weekdays,
		SlotMinutes: 1,
	}
	if err := gridReq.Validate(); err != nil {
		return nil, NewValidationError(CodeValidation, err.Error())
	}

	parties, err := loadBookingParties(ctx, catalog, req.PatientID, req.SpecialtyID, req.StaffID)
	if err != nil {
		return nil, err
	}
	policy := PolicyFor(parties.Specialty)
	if err := policy.ValidatePreview(req); err != nil {
		return nil, err
	}

	gridReq.SlotMinutes = parties.Specialty.SlotDurationMinutes
	grid, err := scheduling.NewGrid(gridReq)
	if err != nil {
		return nil, NewValidationError(CodeValidation, err.Error())
	}
	candidates := grid.All()
	metrics.BulkCandidates(len(candidates))

	var existing []scheduling.Slot
	if span, ok := scheduling.Span(candidates); ok && policy.ChecksOverlap() {
		existing, err = booked.ListBookedSlots(ctx, req.SpecialtyID, req.StaffID, span)
		if err != nil {
			return nil, err
		}
	}

	flagged := policy.Flag(candidates, existing)
	return &bulkPlan{
		req:      req,
		parties:  parties,
		policy:   policy,
		from:     from,
		to:       to,
		status:   status,
		flagged:  flagged,
		selected: policy.Select(flagged, req),
	}, nil
}

type BulkService struct {
	db       txDB
	notifier bookingNotifier
	audit    auditRecorder
}

func NewBulkService(db txDB, notifier bookingNotifier, audit auditRecorder) *BulkService {
	return &BulkService{db: db, notifier: orNoopNotifier(notifier), audit: orNoopAudit(audit)}
}

func (s *BulkService) Preview(ctx context.Context, req BulkRequest) (*BulkPreview, error) {
	plan, err := buildBulkPlan(
		ctx,
		repository.NewCatalogRepository(s.db),
		repository.NewAppointmentRepository(s.db),
		req,
	)
	if err != nil {
		return nil, err
	}
	return plan.preview(), nil
}

// Confirm rebuilds the plan inside one transaction and writes the billing rows and every
// selected appointment. Nothing is persisted when any step fails.
func (s *BulkService) Confirm(ctx context.Context, actor models.Actor, req BulkRequest) (*BulkResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAppointmentRepo := repository.NewAppointmentRepository(tx)
	plan, err := buildBulkPlan(ctx, repository.NewCatalogRepository(tx), txAppointmentRepo, req)
	if err != nil {
		return nil, rejected(err)
	}
	if err := plan.policy.ValidateConfirm(req); err != nil {
		return nil, rejected(err)
	}
	if err := plan.policy.EnsureCapacity(plan.flagged, req); err != nil {
		return nil, rejected(err)
	}

	resolver := NewCopaymentResolver(repository.NewCopaymentConfigRepository(tx))
	copayment, err := resolver.Resolve(ctx, plan.parties.Patient, plan.parties.Specialty)
	if err != nil {
		return nil, err
	}

	var orderID *int64
	if plan.policy.IsKinesiology() {
		order, err := repository.NewKinesiologyOrderRepository(tx).Upsert(ctx, req.PatientID, *req.OrderNumber, *req.SessionCount)
		if err != nil {
			return nil, notFoundOr(err, "kinesiology order not found")
		}
		orderID = &order.ID
	}

	if months := plan.policy.MonthsToBill(plan.from, plan.to); len(months) > 0 {
		txGymRepo := repository.NewGymPaymentRepository(tx)
		for _, month := range months {
			if _, err := txGymRepo.Ensure(ctx, req.PatientID, month, *req.GymMonthlyFee); err != nil {
				return nil, err
			}
		}
	}

	created := make([]models.Appointment, 0, len(plan.selected))
	for i, slot := range plan.selected {
		input := repository.CreateAppointmentInput{
			PatientID:       req.PatientID,
			SpecialtyID:     req.SpecialtyID,
			StaffID:         req.StaffID,
			StartAt:         slot.Start,
			EndAt:           slot.End,
			Status:          plan.status,
			Notes:           req.Notes,
			CopaymentAmount: copayment,
		}
		if orderID != nil {
			session := i + 1
			input.KinesiologyOrderID = orderID
			input.SessionNumber = &session
		}

		appointment, err := txAppointmentRepo.Create(ctx, input)
		if err != nil {
			return nil, notFoundOr(err, "appointment references a missing record")
		}
		plan.parties.decorate(appointment)
		created = append(created, *appointment)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	summary := plan.summary()
	metrics.AppointmentsCreated("bulk", string(plan.policy.Category), len(created))
	if len(created) > 0 {
		s.notifier.AppointmentsBulkCreated(actor, created)
	}
	s.audit.Record(actor, "APPOINTMENTS_BULK_CREATED", "appointment", "", map[string]any{
		"pacienteId":     req.PatientID,
		"especialidadId": req.SpecialtyID,
		"desde":          req.From,
		"hasta":          req.To,
		"created":        len(created),
		"skipped":        summary.Conflicts,
	})

	return &BulkResult{
		CreatedCount:     len(created),
		SkippedConflicts: summary.Conflicts,
		TotalRequested:   summary.Total,
		Created:          created,
	}, nil
}

// rejected counts domain rejections before handing the error back.
func rejected(err error) error {
	if appErr, ok := AsAppError(err); ok {
		metrics.BookingRejected(appErr.Code)
	}
	return err
}

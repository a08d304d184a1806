package services

import (
	"math"
	"time"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/internal/scheduling"
)

// BillingPolicy holds the per-category rules of bulk booking: extra preconditions, whether
// candidates are checked for overlap and what is created alongside the appointments.
type BillingPolicy struct {
	Category models.SpecialtyCategory
}

func PolicyFor(specialty *models.Specialty) BillingPolicy {
	if specialty == nil {
		return BillingPolicy{Category: models.CategoryDefault}
	}
	return BillingPolicy{Category: models.ParseSpecialtyCategory(string(specialty.Category))}
}

func (p BillingPolicy) IsGym() bool {
	return p.Category == models.CategoryGym
}

func (p BillingPolicy) IsKinesiology() bool {
	return p.Category == models.CategoryKinesiology
}

// ValidatePreview checks the rules that apply before any grid is shown.
func (p BillingPolicy) ValidatePreview(req BulkRequest) error {
	if !p.IsKinesiology() {
		return nil
	}
	if req.OrderNumber == nil || *req.OrderNumber <= 0 {
		return NewValidationError(CodeKinesiologyOrder, "numeroOrden is required for kinesiology")
	}
	if req.SessionCount == nil || *req.SessionCount <= 0 {
		return NewValidationError(CodeKinesiologySessions, "cantidadSesiones is required for kinesiology")
	}
	return nil
}

// ValidateConfirm adds the rules that only matter when rows are written.
func (p BillingPolicy) ValidateConfirm(req BulkRequest) error {
	if err := p.ValidatePreview(req); err != nil {
		return err
	}
	if p.IsGym() && (req.GymMonthlyFee == nil || *req.GymMonthlyFee <= 0) {
		return NewValidationError(CodeGymFeeRequired, "importeMensualGimnasio is required for the gym")
	}
	if p.IsGym() && *req.GymMonthlyFee > math.MaxInt32 {
		return NewValidationError(CodeValidation, "importeMensualGimnasio is too large")
	}
	return nil
}

// ChecksOverlap is false for kinesiology, where several patients share the same slot.
func (p BillingPolicy) ChecksOverlap() bool {
	return !p.IsKinesiology()
}

func (p BillingPolicy) Flag(candidates []scheduling.Slot, existing []scheduling.Slot) []scheduling.Candidate {
	if !p.ChecksOverlap() {
		return scheduling.ConflictFree(candidates)
	}
	return scheduling.DetectConflicts(candidates, existing)
}

// Select returns the slots a confirm would create, in generation order.
func (p BillingPolicy) Select(flagged []scheduling.Candidate, req BulkRequest) []scheduling.Slot {
	available := scheduling.Available(flagged)
	if p.IsKinesiology() && req.SessionCount != nil && len(available) > *req.SessionCount {
		available = available[:*req.SessionCount]
	}
	return available
}

// EnsureCapacity fails when a kinesiology order cannot be fully scheduled.
func (p BillingPolicy) EnsureCapacity(flagged []scheduling.Candidate, req BulkRequest) error {
	if !p.IsKinesiology() || req.SessionCount == nil {
		return nil
	}
	available := len(flagged) - scheduling.CountConflicts(flagged)
	if available < *req.SessionCount {
		return NewInsufficientSlotsError(*req.SessionCount, available)
	}
	return nil
}

// MonthsToBill lists the gym months covered by [from, to]. Other categories bill nothing.
func (p BillingPolicy) MonthsToBill(from, to time.Time) []string {
	if !p.IsGym() {
		return nil
	}
	return scheduling.MonthsTouched(from, to)
}

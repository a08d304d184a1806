package services

import (
	"context"
	"math"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

type copaymentConfigReader interface {
	GetOrCreate(ctx context.Context) (*models.CopaymentConfig, error)
}

type copaymentConfigStore interface {
	copaymentConfigReader
	Update(ctx context.Context, tier1 *int, tier2 *int) (*models.CopaymentConfig, error)
}

// CopaymentResolver computes the amount snapshotted on an appointment when it is created.
type CopaymentResolver struct {
	config copaymentConfigReader
}

func NewCopaymentResolver(config copaymentConfigReader) *CopaymentResolver {
	return &CopaymentResolver{config: config}
}

// Resolve returns zero for gym bookings and for patients without a tiered insurance plan.
// Only the tiered case reads the configuration.
func (r *CopaymentResolver) Resolve(
	ctx context.Context,
	patient *models.Patient,
	specialty *models.Specialty,
) (int, error) {
	if specialty != nil && specialty.Category == models.CategoryGym {
		return 0, nil
	}
	if patient == nil || patient.InsurancePlanID == nil || patient.CopaymentTier == nil {
		return 0, nil
	}

	cfg, err := r.config.GetOrCreate(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.Amount(*patient.CopaymentTier), nil
}

type CopaymentService struct {
	store copaymentConfigStore
	audit auditRecorder
}

func NewCopaymentService(store copaymentConfigStore, audit auditRecorder) *CopaymentService {
	return &CopaymentService{store: store, audit: orNoopAudit(audit)}
}

func (s *CopaymentService) GetConfig(ctx context.Context) (*models.CopaymentConfig, error) {
	return s.store.GetOrCreate(ctx)
}

type UpdateCopaymentInput struct {
	Tier1 *int
	Tier2 *int
}

// UpdateConfig changes the tiers that are set. Existing appointments keep their amounts.
func (s *CopaymentService) UpdateConfig(
	ctx context.Context,
	actor models.Actor,
	input UpdateCopaymentInput,
) (*models.CopaymentConfig, error) {
	if err := validateTier("tier1", input.Tier1); err != nil {
		return nil, err
	}
	if err := validateTier("tier2", input.Tier2); err != nil {
		return nil, err
	}

	if _, err := s.store.GetOrCreate(ctx); err != nil {
		return nil, err
	}
	cfg, err := s.store.Update(ctx, input.Tier1, input.Tier2)
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "COPAYMENT_CONFIG_UPDATED", "copayment_config", cfg.ID, map[string]any{
		"tier1": cfg.Tier1,
		"tier2": cfg.Tier2,
	})
	return cfg, nil
}

func validateTier(name string, amount *int) error {
	switch {
	case amount == nil:
		return nil
	case *amount < 0:
		return NewValidationError(CodeValidation, name+" must not be negative")
	case *amount > math.MaxInt32:
		return NewValidationError(CodeValidation, name+" is too large")
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCopaymentStore struct {
	cfg       models.CopaymentConfig
	reads     int
	updates   int
	updateErr error
}

func (s *stubCopaymentStore) GetOrCreate(context.Context) (*models.CopaymentConfig, error) {
	s.reads++
	cfg := s.cfg
	return &cfg, nil
}

func (s *stubCopaymentStore) Update(_ context.Context, tier1 *int, tier2 *int) (*models.CopaymentConfig, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updates++
	if tier1 != nil {
		s.cfg.Tier1 = *tier1
	}
	if tier2 != nil {
		s.cfg.Tier2 = *tier2
	}
	cfg := s.cfg
	return &cfg, nil
}

type recordedAudit struct {
	action   string
	entity   string
	entityID string
	payload  map[string]any
}

type stubAudit struct {
	records []recordedAudit
}

func (s *stubAudit) Record(_ models.Actor, action, entity, entityID string, payload map[string]any) {
	s.records = append(s.records, recordedAudit{action: action, entity: entity, entityID: entityID, payload: payload})
}

func tierPtr(tier models.CopaymentTier) *models.CopaymentTier {
	return &tier
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestCopaymentResolver(t *testing.T) {
	store := &stubCopaymentStore{cfg: models.CopaymentConfig{ID: models.CopaymentConfigID, Tier1: 3000, Tier2: 5000}}
	resolver := NewCopaymentResolver(store)
	general := &models.Specialty{Category: models.CategoryDefault}
	gym := &models.Specialty{Category: models.CategoryGym}

	tests := []struct {
		name      string
		patient   *models.Patient
		specialty *models.Specialty
		want      int
	}{
		{"gym is free", &models.Patient{InsurancePlanID: int64Ptr(1), CopaymentTier: tierPtr(models.CopaymentTier1)}, gym, 0},
		{"no plan", &models.Patient{}, general, 0},
		{"plan without tier", &models.Patient{InsurancePlanID: int64Ptr(1)}, general, 0},
		{"tier1", &models.Patient{InsurancePlanID: int64Ptr(1), CopaymentTier: tierPtr(models.CopaymentTier1)}, general, 3000},
		{"tier2", &models.Patient{InsurancePlanID: int64Ptr(1), CopaymentTier: tierPtr(models.CopaymentTier2)}, general, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := resolver.Resolve(context.Background(), tt.patient, tt.specialty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount)
		})
	}
}

func TestCopaymentResolverSkipsConfigWhenUntiered(t *testing.T) {
	store := &stubCopaymentStore{}
	resolver := NewCopaymentResolver(store)

	_, err := resolver.Resolve(context.Background(), &models.Patient{}, &models.Specialty{})
	require.NoError(t, err)
	assert.Equal(t, 0, store.reads)
}

func TestUpdateConfigRejectsNegativeTiers(t *testing.T) {
	store := &stubCopaymentStore{}
	service := NewCopaymentService(store, nil)

	_, err := service.UpdateConfig(context.Background(), models.Actor{UserID: 1}, UpdateCopaymentInput{Tier1: intPtr(-1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = service.UpdateConfig(context.Background(), models.Actor{UserID: 1}, UpdateCopaymentInput{Tier2: intPtr(-5)})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, store.updates)
}

func TestUpdateConfigRejectsTiersBeyondColumnRange(t *testing.T) {
	store := &stubCopaymentStore{}
	service := NewCopaymentService(store, nil)

	_, err := service.UpdateConfig(context.Background(), models.Actor{UserID: 1}, UpdateCopaymentInput{Tier1: intPtr(math.MaxInt32 + 1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = service.UpdateConfig(context.Background(), models.Actor{UserID: 1}, UpdateCopaymentInput{Tier2: intPtr(3000000000)})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, store.updates)
}

func TestUpdateConfigKeepsUnsetTierAndAudits(t *testing.T) {
	store := &stubCopaymentStore{cfg: models.CopaymentConfig{ID: models.CopaymentConfigID, Tier1: 1000, Tier2: 2000}}
	audit := &stubAudit{}
	service := NewCopaymentService(store, audit)

	cfg, err := service.UpdateConfig(context.Background(), models.Actor{UserID: 7}, UpdateCopaymentInput{Tier2: intPtr(2500)})
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Tier1)
	assert.Equal(t, 2500, cfg.Tier2)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "COPAYMENT_CONFIG_UPDATED", audit.records[0].action)
	assert.Equal(t, 1, store.reads)
}

func TestUpdateConfigPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	audit := &stubAudit{}
	service := NewCopaymentService(&stubCopaymentStore{updateErr: boom}, audit)

	_, err := service.UpdateConfig(context.Background(), models.Actor{}, UpdateCopaymentInput{Tier1: intPtr(10)})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, audit.records)
}

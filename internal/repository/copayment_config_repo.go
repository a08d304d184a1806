package repository

import (
	"context"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

type CopaymentConfigRepository struct {
	db DBTX
}

func NewCopaymentConfigRepository(db DBTX) *CopaymentConfigRepository {
	return &CopaymentConfigRepository{db: db}
}

// GetOrCreate returns the singleton row, inserting the zero-valued default on first use.
func (r *CopaymentConfigRepository) GetOrCreate(ctx context.Context) (*models.CopaymentConfig, error) {
	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO copayment_config (id, tier1, tier2) VALUES ($1, 0, 0) ON CONFLICT (id) DO NOTHING`,
		models.CopaymentConfigID,
	); err != nil {
		return nil, translate("init copayment config", err)
	}

	var cfg models.CopaymentConfig
	err := r.db.QueryRow(
		ctx,
		`SELECT id, tier1, tier2, updated_at FROM copayment_config WHERE id = $1`,
		models.CopaymentConfigID,
	).Scan(&cfg.ID, &cfg.Tier1, &cfg.Tier2, &cfg.UpdatedAt)
	if err != nil {
		return nil, translate("get copayment config", err)
	}
	return &cfg, nil
}

// Update changes the tiers that are non-nil. The row must already exist.
func (r *CopaymentConfigRepository) Update(
	ctx context.Context,
	tier1 *int,
	tier2 *int,
) (*models.CopaymentConfig, error) {
	query := `
		UPDATE copayment_config
		SET tier1 = COALESCE($2, tier1), tier2 = COALESCE($3, tier2), updated_at = NOW()
		WHERE id = $1
		RETURNING id, tier1, tier2, updated_at
	`
	var cfg models.CopaymentConfig
	err := r.db.QueryRow(ctx, query, models.CopaymentConfigID, tier1, tier2).
		Scan(&cfg.ID, &cfg.Tier1, &cfg.Tier2, &cfg.UpdatedAt)
	if err != nil {
		return nil, translate("update copayment config", err)
	}
	return &cfg, nil
}

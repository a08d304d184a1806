package repository

import (
	"context"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

// CatalogRepository reads the patient, specialty and staff tables owned by the clinic
// administration side. The scheduling engine never writes them.
type CatalogRepository struct {
	db DBTX
}

func NewCatalogRepository(db DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetPatient(ctx context.Context, patientID int64) (*models.Patient, error) {
	query := `
		SELECT p.id, p.first_name, p.last_name, p.email, p.active, p.insurance_plan_id, ip.copayment_tier
		FROM patients p
		LEFT JOIN insurance_plans ip ON ip.id = p.insurance_plan_id
		WHERE p.id = $1
	`
	var patient models.Patient
	var tier *string
	err := r.db.QueryRow(ctx, query, patientID).Scan(
		&patient.ID,
		&patient.FirstName,
		&patient.LastName,
		&patient.Email,
		&patient.Active,
		&patient.InsurancePlanID,
		&tier,
	)
	if err != nil {
		return nil, translate("get patient", err)
	}
	if tier != nil {
		value := models.CopaymentTier(*tier)
		patient.CopaymentTier = &value
	}
	return &patient, nil
}

func (r *CatalogRepository) GetSpecialty(ctx context.Context, specialtyID int64) (*models.Specialty, error) {
	query := `
		SELECT id, name, slot_duration_minutes, category, active
		FROM specialties
		WHERE id = $1
	`
	var specialty models.Specialty
	var category string
	err := r.db.QueryRow(ctx, query, specialtyID).Scan(
		&specialty.ID,
		&specialty.Name,
		&specialty.SlotDurationMinutes,
		&category,
		&specialty.Active,
	)
	if err != nil {
		return nil, translate("get specialty", err)
	}
	specialty.Category = models.ParseSpecialtyCategory(category)
	return &specialty, nil
}

func (r *CatalogRepository) GetStaff(ctx context.Context, staffID int64) (*models.Staff, error) {
	query := `
		SELECT id, name, email, active
		FROM staff
		WHERE id = $1
	`
	var staff models.Staff
	err := r.db.QueryRow(ctx, query, staffID).Scan(&staff.ID, &staff.Name, &staff.Email, &staff.Active)
	if err != nil {
		return nil, translate("get staff", err)
	}
	return &staff, nil
}

package repository

import (
	"context"

	"github.com/saeid-a/ClinicAgendaBack/internal/models"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, event *models.AuditEvent) error {
	query := `
		INSERT INTO audit_events (action, entity, entity_id, user_id, payload, ip, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	var payload any
	if len(event.Payload) > 0 {
		payload = string(event.Payload)
	}
	err := r.db.QueryRow(
		ctx,
		query,
		event.Action,
		event.Entity,
		event.EntityID,
		event.UserID,
		payload,
		event.IP,
		event.RequestID,
	).Scan(&event.ID, &event.CreatedAt)
	return translate("insert audit event", err)
}

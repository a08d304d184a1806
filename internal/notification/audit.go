package notification

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
)

type auditWriter interface {
	Insert(ctx context.Context, event *models.AuditEvent) error
}

type enqueuer interface {
	Enqueue(kind string, run func(ctx context.Context) error) bool
}

// AuditRecorder writes audit_events rows in the background. A failed insert is logged and
// otherwise ignored.
type AuditRecorder struct {
	store      auditWriter
	dispatcher enqueuer
	log        *logger.Logger
}

func NewAuditRecorder(store auditWriter, dispatcher enqueuer, log *logger.Logger) *AuditRecorder {
	return &AuditRecorder{store: store, dispatcher: dispatcher, log: log}
}

func (r *AuditRecorder) Record(actor models.Actor, action, entity, entityID string, payload map[string]any) {
	r.log.Audit(actor.UserID, action, entity, true, payload)

	event := buildAuditEvent(actor, action, entity, entityID, payload)
	r.dispatcher.Enqueue("audit", func(ctx context.Context) error {
		return r.store.Insert(ctx, event)
	})
}

func buildAuditEvent(actor models.Actor, action, entity, entityID string, payload map[string]any) *models.AuditEvent {
	event := &models.AuditEvent{
		Action: action,
		Entity: entity,
		UserID: actor.UserIDPtr(),
	}
	if entityID != "" {
		event.EntityID = &entityID
	}
	if actor.IP != "" {
		ip := actor.IP
		event.IP = &ip
	}
	if id, err := uuid.Parse(actor.RequestID); err == nil {
		event.RequestID = &id
	}
	if len(payload) > 0 {
		if encoded, err := json.Marshal(payload); err == nil {
			event.Payload = encoded
		}
	}
	return event
}

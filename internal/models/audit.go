package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditEvent struct {
	ID        int64           `json:"id"`
	Action    string          `json:"accion"`
	Entity    string          `json:"entidad"`
	EntityID  *string         `json:"entidadId"`
	UserID    *int64          `json:"usuarioId"`
	Payload   json.RawMessage `json:"datos,omitempty"`
	IP        *string         `json:"ip"`
	RequestID *uuid.UUID      `json:"requestId"`
	CreatedAt time.Time       `json:"createdAt"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Actor identifies who performed a request, for history rows and audit events.
type Actor struct {
	UserID    int64
	Role      string
	IP        string
	RequestID string
}

func (a Actor) UserIDPtr() *int64 {
	if a.UserID <= 0 {
		return nil
	}
	id := a.UserID
	return &id
}

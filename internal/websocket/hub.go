// Package agendaws pushes agenda changes to connected staff over websockets.
package agendaws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/saeid-a/ClinicAgendaBack/internal/models"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/sirupsen/logrus"
)

const textMessage = 1

// conn is the part of *websocket.Conn the hub needs.
type conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.AgendaEvent
	done       chan struct{}
	log        *logrus.Entry
}

// Client receives every event, or only those of one specialty when SpecialtyID is set.
type Client struct {
	ID          uuid.UUID
	UserID      string
	SpecialtyID int64

	hub  *Hub
	conn conn
	send chan []byte
}

type envelope struct {
	models.AgendaEvent
	ID uuid.UUID `json:"id"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.AgendaEvent, 64),
		done:       make(chan struct{}),
		log:        log.WithComponent("agenda_hub"),
	}
}

func NewClient(hub *Hub, conn conn, userID string, specialtyID int64) *Client {
	return &Client{
		ID:          uuid.New(),
		UserID:      userID,
		SpecialtyID: specialtyID,
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 32),
	}
}

// Run owns the client set until ctx is cancelled, then closes every client.
// It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.log.WithFields(logrus.Fields{"client_id": client.ID, "user_id": client.UserID}).Debug("agenda client connected")
		case client := <-h.unregister:
			h.drop(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Register hands client to the hub. Once the hub has stopped the client is closed
// straight away so its WritePump returns.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish never blocks; when the hub is saturated the event is dropped.
func (h *Hub) Publish(event models.AgendaEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.WithField("type", event.Type).Warn("agenda event dropped: hub busy")
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

func (h *Hub) deliver(event models.AgendaEvent) {
	payload, err := json.Marshal(envelope{AgendaEvent: event, ID: uuid.New()})
	if err != nil {
		h.log.WithError(err).Error("encode agenda event")
		return
	}

	for client := range h.clients {
		if client.SpecialtyID > 0 && client.SpecialtyID != event.SpecialtyID {
			continue
		}
		select {
		case client.send <- payload:
		default:
			h.drop(client)
		}
	}
}

// ReadPump only watches for the peer going away; clients never send commands.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(textMessage, payload); err != nil {
			return
		}
	}
}

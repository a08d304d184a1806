package handlers

import (
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	agendaws "github.com/saeid-a/ClinicAgendaBack/internal/websocket"
	"github.com/saeid-a/ClinicAgendaBack/pkg/utils"
)

// AgendaHandler streams agenda events to staff screens.
type AgendaHandler struct {
	hub       *agendaws.Hub
	jwtSecret string
}

func NewAgendaHandler(hub *agendaws.Hub, jwtSecret string) *AgendaHandler {
	return &AgendaHandler{hub: hub, jwtSecret: jwtSecret}
}

// WebSocketAuth accepts the token as a query parameter because browsers cannot set headers
// on a websocket handshake.
func (h *AgendaHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return respondError(c, fiber.StatusUpgradeRequired, "UPGRADE_REQUIRED", "WebSocket upgrade required", nil)
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, codeUnauthorized, "Invalid or expired token", nil)
	}
	specialtyID, ok := parseOptionalID(c.Query("especialidadId"))
	if !ok {
		return badRequest(c, "especialidadId must be a positive integer")
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	c.Locals("specialty_id", specialtyID)
	return c.Next()
}

func (h *AgendaHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	specialtyID, _ := conn.Locals("specialty_id").(int64)
	client := agendaws.NewClient(h.hub, conn, userID, specialtyID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *AgendaHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}

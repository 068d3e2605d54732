package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/internal/ws"
	"github.com/gatepass/backend/pkg/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, validate origin
	},
}

// WSHandler handles WebSocket connections. A connection only joins the
// presence registry once the peer sends its register event.
type WSHandler struct {
	hub        *ws.Hub
	jwtManager *auth.JWTManager
}

func NewWSHandler(hub *ws.Hub, jwtManager *auth.JWTManager) *WSHandler {
	return &WSHandler{
		hub:        hub,
		jwtManager: jwtManager,
	}
}

// HandleWebSocket upgrades HTTP to WebSocket and manages the connection
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn)

	go client.WritePump()
	go client.ReadPump(h.handleWSMessage)
}

// handleWSMessage processes incoming WebSocket events from clients
func (h *WSHandler) handleWSMessage(client *ws.Client, event model.WSEvent) {
	switch event.Type {
	case model.WSEventRegister:
		h.handleRegister(client, event)
	default:
		log.Printf("📩 WS ignored event %q from %s", event.Type, client.UserID)
	}
}

// handleRegister installs the connection in the presence registry. A session
// token, when supplied, is validated and overrides whatever identity the
// client claimed.
func (h *WSHandler) handleRegister(client *ws.Client, event model.WSEvent) {
	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return
	}
	var reg model.RegisterEvent
	if err := json.Unmarshal(raw, &reg); err != nil {
		log.Printf("Invalid WS register payload: %v", err)
		return
	}

	if reg.Token != "" {
		claims, err := h.jwtManager.ValidateToken(reg.Token)
		if err != nil {
			log.Printf("WS register rejected: invalid token: %v", err)
			return
		}
		reg.UserID = claims.UserID
		reg.Role = claims.Role
	}
	if reg.UserID == uuid.Nil {
		log.Printf("WS register rejected: missing user id")
		return
	}

	client.UserID = reg.UserID
	client.Role = reg.Role
	h.hub.Register(client)
}

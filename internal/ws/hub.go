package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/gatepass/backend/internal/model"
)

// Hub is the presence registry: an in-memory, process-lifetime map from
// authenticated user to their open WebSocket connection and role. It is
// intentionally volatile. No source of truth lives here, only a best-effort
// addressing table rebuilt from client register events after a restart.
type Hub struct {
	mu sync.RWMutex
	// One live connection per user. A second connection from the same user
	// replaces (and terminates) the first, so a stale tab never receives
	// duplicate deliveries.
	clients map[uuid.UUID]*Client
}

// NewHub creates an empty presence registry
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Register installs a client under its user id, terminating any prior
// connection for the same user
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	prior := h.clients[client.UserID]
	h.clients[client.UserID] = client
	h.mu.Unlock()

	if prior != nil && prior != client {
		prior.closeSend()
	}
	log.Printf("✅ WS client registered: user=%s role=%s", client.UserID, client.Role)
}

// Unregister removes a client's entry. A no-op when the client was already
// replaced by a newer connection.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.UserID]
	if ok && current == client {
		delete(h.clients, client.UserID)
	}
	h.mu.Unlock()

	client.closeSend()
	if ok && current == client {
		log.Printf("❌ WS client disconnected: user=%s", client.UserID)
	}
}

// SendToUser delivers an event to a user's connection. Returns true when an
// entry existed and the send was attempted; callers use false to fall back to
// push-only delivery.
func (h *Hub) SendToUser(userID uuid.UUID, event string, payload interface{}) bool {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	data, err := json.Marshal(model.WSEvent{Type: event, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling WS event %q: %v", event, err)
		return false
	}
	client.trySend(data)
	return true
}

// BroadcastToRole delivers an event to every connected user with the given
// role. Silently does nothing when no such user is connected.
func (h *Hub) BroadcastToRole(role model.Role, event string, payload interface{}) {
	data, err := json.Marshal(model.WSEvent{Type: event, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling WS broadcast %q: %v", event, err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0)
	for _, client := range h.clients {
		if client.Role == role {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.trySend(data)
	}
}

// IsUserOnline reports whether a user currently has a registered connection
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// OnlineCount returns the number of registered connections
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks every connected WebSocket client, keyed by user ID. Owners and
// vendors get negotiation events pushed here so they react without polling.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = conn
	log.Printf("WebSocket client registered: %s", userID)
}

func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Printf("WebSocket client unregistered: %s", userID)
	}
}

// Send delivers a message to one client. An offline client is not an error.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[userID]
	if !ok {
		log.Printf("WebSocket client not found, could not send message: %s", userID)
		return nil
	}

	return conn.WriteMessage(websocket.TextMessage, message)
}

// Notify marshals an event payload and sends it to one user.
func (h *Hub) Notify(userID, event string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		log.Printf("Failed to marshal %s notification: %v", event, err)
		return
	}
	if err := h.Send(userID, message); err != nil {
		log.Printf("Failed to send %s notification to %s: %v", event, userID, err)
	}
}

package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/stafflink/portal_backend/models"
)

// Event types pushed to connected portal sessions.
const (
	EventTypeConnected    = "connected"
	EventTypeNotification = "notification"
	EventTypeFeed         = "feed"
)

// Event is a message sent over WebSocket to a portal session.
type Event struct {
	Type  string      `json:"type"`
	Email string      `json:"email,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// Client represents a connected portal session. A recipient may hold
// several at once (multiple tabs).
type Client struct {
	Email string
	Conn  *websocket.Conn

	writeMu sync.Mutex
}

// WriteJSON sends one event to the session. All writes go through here: the
// underlying connection supports only one concurrent writer.
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub maintains the set of active clients keyed by recipient email and
// pushes notification events to them.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Email] == nil {
				h.clients[client.Email] = make(map[*Client]bool)
			}
			h.clients[client.Email][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.Email]; ok {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.clients, client.Email)
				}
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToRecipient sends an event to every open session of one recipient.
func (h *Hub) SendToRecipient(email string, event Event) error {
	h.mu.RLock()
	conns := h.clients[email]
	if len(conns) == 0 {
		h.mu.RUnlock()
		return fmt.Errorf("recipient not connected")
	}
	clients := make([]*Client, 0, len(conns))
	for client := range conns {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	var lastErr error
	for _, client := range clients {
		if err := client.WriteJSON(event); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// PushNotification delivers a freshly created notification to the
// recipient's open sessions. Best-effort: an offline recipient just picks
// it up on the next poll.
func (h *Hub) PushNotification(n *models.Notification) {
	_ = h.SendToRecipient(n.RecipientEmail, Event{
		Type:  EventTypeNotification,
		Email: n.RecipientEmail,
		Data:  n,
	})
}

package notify

import (
	"encoding/json"
	"sync"
	"time"
)

// Event is pushed to approver dashboards when a request is submitted or
// transitions.
type Event struct {
	RequestID           string    `json:"request_id"`
	RequestType         string    `json:"request_type"`
	Status              string    `json:"status"`
	CurrentApproverRole string    `json:"current_approver_role,omitempty"`
	Decision            string    `json:"decision,omitempty"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// Hub manages websocket subscribers. Each client subscribes with its role
// and receives the events addressed to that role.
type Hub struct {
	clients map[*Client]bool

	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run processes register/unregister/broadcast events until the process
// exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRole delivers a message to every client subscribed with the
// role. Slow clients are dropped rather than blocking delivery.
func (h *Hub) BroadcastToRole(role string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.Role != role {
			continue
		}
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// PublishEvent serializes the event and routes it. Pending events go to the
// role whose queue grew; terminal events go to every subscriber so open
// dashboards refresh.
func (h *Hub) PublishEvent(ev *Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.CurrentApproverRole != "" {
		h.BroadcastToRole(ev.CurrentApproverRole, data)
		return
	}
	h.mu.Lock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event types pushed to connected clients.
const (
	EventTemplateUpdated = "template.updated"
	EventTemplateDeleted = "template.deleted"
	EventPrintCreated    = "print.created"
	EventPrintUpdated    = "print.updated"
)

// Event tells listening previews that something they render has changed.
type Event struct {
	Type       string    `json:"type"`
	TemplateID string    `json:"templateId,omitempty"`
	PrintJobID string    `json:"printJobId,omitempty"`
	Status     string    `json:"status,omitempty"`
	At         time.Time `json:"at"`
}

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			h.mu.Unlock()
			log.Printf("🔌 Preview client connected: %s", c.ID)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.ID]; ok {
				delete(h.clients, c.ID)
				close(c.send)
				log.Printf("📴 Preview client disconnected: %s", c.ID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client: drop it rather than stall everyone.
					close(c.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues ev for every connected client. It never blocks; when the
// queue is full the event is dropped and false is returned.
func (h *Hub) Broadcast(ev Event) bool {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("⚠️ Error marshaling event: %v", err)
		return false
	}
	select {
	case h.broadcast <- msg:
		return true
	default:
		log.Printf("⚠️ Event queue full, dropping %s", ev.Type)
		return false
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

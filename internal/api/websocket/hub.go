package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

const (
	MessageTypeOddsUpdate = "odds_update"
	MessageTypeStatus     = "status"
	MessageTypeError      = "error"
	MessageTypePong       = "pong"
)

// Message is the frame pushed to subscribers.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Status    string      `json:"status,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and fans broadcasts out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	maxConnections int
}

// NewHub creates a hub. maxConnections <= 0 falls back to 1000.
func NewHub(maxConnections int) *Hub {
	if maxConnections <= 0 {
		maxConnections = 1000
	}
	return &Hub{
		clients:        make(map[*Client]bool),
		register:       make(chan *Client, 256),
		unregister:     make(chan *Client, 256),
		maxConnections: maxConnections,
	}
}

// Run processes register/unregister requests until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= h.maxConnections {
		log.Printf("[websocket] connection rejected, at capacity (%d)", h.maxConnections)
		errMsg := Message{Type: MessageTypeError, Error: "server at capacity", Timestamp: time.Now()}
		data, _ := json.Marshal(errMsg)
		client.send <- data
		close(client.send)
		return
	}

	h.clients[client] = true
	log.Printf("[websocket] client connected (total: %d)", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		log.Printf("[websocket] client disconnected (total: %d)", len(h.clients))
	}
}

// Broadcast pushes an odds update to every connected client. Clients whose
// send buffer is full are dropped rather than allowed to stall the fan-out.
func (h *Hub) Broadcast(payload interface{}) {
	message := Message{Type: MessageTypeOddsUpdate, Data: payload, Timestamp: time.Now()}
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[websocket] encoding broadcast: %v", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		log.Printf("[websocket] dropping slow client")
		h.unregister <- client
	}
}

// CanAccept reports whether a new connection would be admitted.
func (h *Hub) CanAccept() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) < h.maxConnections
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

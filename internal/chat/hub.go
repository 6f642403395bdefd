// internal/chat/hub.go
// Central registry of connected websocket clients

package chat

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub routes messages to connected clients by user ID.
// A user has at most one live connection; a new connection replaces the old.
type Hub struct {
	clients    map[int64]*Client
	register   chan *Client
	unregister chan *Client
	outbound   chan outboundMessage
	done       chan struct{}
	closeOnce  sync.Once
}

type outboundMessage struct {
	userID  int64
	payload []byte
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan outboundMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until Shutdown is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
			}
			h.clients[client.userID] = client
			log.Printf("Chat client connected: user %d (%d online)", client.userID, len(h.clients))

		case client := <-h.unregister:
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
				log.Printf("Chat client disconnected: user %d (%d online)", client.userID, len(h.clients))
			}

		case msg := <-h.outbound:
			if client, ok := h.clients[msg.userID]; ok {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop the connection
					delete(h.clients, client.userID)
					close(client.send)
				}
			}

		case <-h.done:
			for userID, client := range h.clients {
				close(client.send)
				delete(h.clients, userID)
			}
			return
		}
	}
}

// SendToUser delivers a frame to a user if they are connected
func (h *Hub) SendToUser(userID int64, msg *WireMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal wire message: %v", err)
		return
	}

	select {
	case h.outbound <- outboundMessage{userID: userID, payload: payload}:
	case <-h.done:
	}
}

// Shutdown closes all client connections and stops the run loop
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() { close(h.done) })
}

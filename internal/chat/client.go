// internal/chat/client.go
// Per-connection websocket pumps

package chat

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one authenticated websocket connection
type Client struct {
	hub     *Hub
	service Service
	conn    *websocket.Conn
	userID  int64
	send    chan []byte
}

// newClient wraps a websocket connection for a user
func newClient(hub *Hub, service Service, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:     hub,
		service: service,
		conn:    conn,
		userID:  userID,
		send:    make(chan []byte, 64),
	}
}

// readPump reads frames from the connection and dispatches them.
// It owns the read side and unregisters the client on exit.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Websocket read error for user %d: %v", c.userID, err)
			}
			return
		}

		var frame WireMessage
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.sendError("invalid frame")
			continue
		}
		c.handleFrame(&frame)
	}
}

// handleFrame processes one inbound frame
func (c *Client) handleFrame(frame *WireMessage) {
	switch frame.Type {
	case WireTypeSend:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		msg, err := c.service.SendMessage(ctx, c.userID, frame.ChatID, &SendMessageRequest{Content: frame.Content})
		if err != nil {
			c.sendError(err.Error())
			return
		}

		// Echo to the sender so all their views stay consistent
		c.hub.SendToUser(c.userID, &WireMessage{Type: WireTypeNew, ChatID: msg.ChatID, Message: msg})

	case WireTypeTyping:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.service.NotifyTyping(ctx, c.userID, frame.ChatID); err != nil {
			c.sendError(err.Error())
		}
	default:
		c.sendError("unknown frame type")
	}
}

func (c *Client) sendError(message string) {
	payload, err := json.Marshal(&WireMessage{Type: WireTypeError, Error: message})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// writePump writes frames and keepalive pings to the connection.
// It owns the write side and closes the connection when send is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

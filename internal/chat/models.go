// internal/chat/models.go
// Chat domain models

package chat

import "time"

// Chat is a conversation channel bound to an accepted match
type Chat struct {
	ID        int64     `json:"id" db:"id"`
	MatchID   int64     `json:"match_id" db:"match_id"`
	UserAID   int64     `json:"user_a_id" db:"user_a_id"`
	UserBID   int64     `json:"user_b_id" db:"user_b_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Participant reports whether a user belongs to the chat
func (c *Chat) Participant(userID int64) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the ID of the opposite side
func (c *Chat) OtherParticipant(userID int64) int64 {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// Message is a single chat message
type Message struct {
	ID        int64      `json:"id" db:"id"`
	ChatID    int64      `json:"chat_id" db:"chat_id"`
	SenderID  int64      `json:"sender_id" db:"sender_id"`
	Content   string     `json:"content" db:"content"`
	ReadAt    *time.Time `json:"read_at" db:"read_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// ChatSummary is a chat with its latest message and unread count
type ChatSummary struct {
	Chat        *Chat    `json:"chat"`
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_count"`
}

// SendMessageRequest posts a message to a chat
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// WireMessage is the JSON frame exchanged over the websocket
type WireMessage struct {
	Type     string   `json:"type"`
	ChatID   int64    `json:"chat_id,omitempty"`
	SenderID int64    `json:"sender_id,omitempty"`
	Content  string   `json:"content,omitempty"`
	Message  *Message `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Wire message types
const (
	WireTypeSend   = "message.send"
	WireTypeNew    = "message.new"
	WireTypeTyping = "typing"
	WireTypeRead   = "chat.read"
	WireTypeError  = "error"
)

// internal/chat/service.go
// Chat business logic

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/skillbarter/backend/internal/matching"
)

// Common errors
var (
	ErrChatNotFound   = errors.New("chat not found")
	ErrNotParticipant = errors.New("not a participant in this chat")
	ErrEmptyMessage   = errors.New("message content is empty")
)

// MatchDirectory is the view of the match store chat needs. Get enforces
// that the caller participates in the match.
type MatchDirectory interface {
	Get(ctx context.Context, userID, matchID int64) (*matching.Match, error)
}

// Service defines chat business operations
type Service interface {
	GetOrCreateChat(ctx context.Context, userID, matchID int64) (*Chat, error)
	ListChats(ctx context.Context, userID int64) ([]*ChatSummary, error)
	ListMessages(ctx context.Context, userID, chatID int64, page, limit int) ([]*Message, int, error)
	SendMessage(ctx context.Context, userID, chatID int64, req *SendMessageRequest) (*Message, error)
	NotifyTyping(ctx context.Context, userID, chatID int64) error
	MarkRead(ctx context.Context, userID, chatID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

// chatService implements Service
type chatService struct {
	repo    Repository
	matches MatchDirectory
	hub     *Hub
}

// NewService creates a chat service
func NewService(repo Repository, matches MatchDirectory, hub *Hub) Service {
	return &chatService{repo: repo, matches: matches, hub: hub}
}

// GetOrCreateChat opens the conversation for an accepted match. The first
// caller creates it; later calls return the same chat.
func (s *chatService) GetOrCreateChat(ctx context.Context, userID, matchID int64) (*Chat, error) {
	match, err := s.matches.Get(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != matching.StatusAccepted && match.Status != matching.StatusCompleted {
		return nil, matching.ErrMatchNotAccepted
	}

	chat := &Chat{
		MatchID: match.ID,
		UserAID: match.UserAID,
		UserBID: match.UserBID,
	}
	if err := s.repo.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *chatService) ListChats(ctx context.Context, userID int64) ([]*ChatSummary, error) {
	return s.repo.ListChatsForUser(ctx, userID)
}

func (s *chatService) ListMessages(ctx context.Context, userID, chatID int64, page, limit int) ([]*Message, int, error) {
	chat, err := s.repo.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}
	if !chat.Participant(userID) {
		return nil, 0, ErrNotParticipant
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.repo.ListMessages(ctx, chatID, page, limit)
}

// SendMessage persists a message and pushes it to the other participant's
// live connection if they have one.
func (s *chatService) SendMessage(ctx context.Context, userID, chatID int64, req *SendMessageRequest) (*Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	chat, err := s.repo.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.Participant(userID) {
		return nil, ErrNotParticipant
	}

	message := &Message{
		ChatID:   chatID,
		SenderID: userID,
		Content:  content,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.SendToUser(chat.OtherParticipant(userID), &WireMessage{
			Type:    WireTypeNew,
			ChatID:  chatID,
			Message: message,
		})
	}
	return message, nil
}

// NotifyTyping relays a typing indicator to the other participant.
// Nothing is persisted.
func (s *chatService) NotifyTyping(ctx context.Context, userID, chatID int64) error {
	chat, err := s.repo.GetChatByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.Participant(userID) {
		return ErrNotParticipant
	}

	if s.hub != nil {
		s.hub.SendToUser(chat.OtherParticipant(userID), &WireMessage{
			Type:     WireTypeTyping,
			ChatID:   chatID,
			SenderID: userID,
		})
	}
	return nil
}

func (s *chatService) MarkRead(ctx context.Context, userID, chatID int64) (int64, error) {
	chat, err := s.repo.GetChatByID(ctx, chatID)
	if err != nil {
		return 0, err
	}
	if !chat.Participant(userID) {
		return 0, ErrNotParticipant
	}

	count, err := s.repo.MarkRead(ctx, chatID, userID)
	if err != nil {
		return 0, err
	}
	if count > 0 && s.hub != nil {
		s.hub.SendToUser(chat.OtherParticipant(userID), &WireMessage{
			Type:     WireTypeRead,
			ChatID:   chatID,
			SenderID: userID,
		})
	}
	return count, nil
}

func (s *chatService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

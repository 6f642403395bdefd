package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skillbarter/backend/internal/matching"
)

// fakeRepo is an in-memory chat repository
type fakeRepo struct {
	chats    map[int64]*Chat
	messages map[int64]*Message
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		chats:    map[int64]*Chat{},
		messages: map[int64]*Message{},
		nextID:   1,
	}
}

func (r *fakeRepo) CreateChat(_ context.Context, c *Chat) error {
	for _, existing := range r.chats {
		if existing.MatchID == c.MatchID {
			*c = *existing
			return nil
		}
	}
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = time.Now()
	stored := *c
	r.chats[c.ID] = &stored
	return nil
}

func (r *fakeRepo) GetChatByID(_ context.Context, id int64) (*Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return nil, ErrChatNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeRepo) GetChatByMatchID(_ context.Context, matchID int64) (*Chat, error) {
	for _, c := range r.chats {
		if c.MatchID == matchID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, ErrChatNotFound
}

func (r *fakeRepo) ListChatsForUser(_ context.Context, userID int64) ([]*ChatSummary, error) {
	var out []*ChatSummary
	for _, c := range r.chats {
		if c.Participant(userID) {
			copied := *c
			out = append(out, &ChatSummary{Chat: &copied})
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateMessage(_ context.Context, m *Message) error {
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = time.Now()
	stored := *m
	r.messages[m.ID] = &stored
	return nil
}

func (r *fakeRepo) ListMessages(_ context.Context, chatID int64, _, _ int) ([]*Message, int, error) {
	var out []*Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) MarkRead(_ context.Context, chatID, readerID int64) (int64, error) {
	var marked int64
	now := time.Now()
	for _, m := range r.messages {
		if m.ChatID == chatID && m.SenderID != readerID && m.ReadAt == nil {
			m.ReadAt = &now
			marked++
		}
	}
	return marked, nil
}

func (r *fakeRepo) UnreadCount(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, m := range r.messages {
		chat, ok := r.chats[m.ChatID]
		if ok && chat.Participant(userID) && m.SenderID != userID && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

// fakeMatches returns canned matches with participant enforcement
type fakeMatches struct {
	matches map[int64]*matching.Match
}

func (f *fakeMatches) Get(_ context.Context, userID, matchID int64) (*matching.Match, error) {
	m, ok := f.matches[matchID]
	if !ok {
		return nil, matching.ErrMatchNotFound
	}
	if !m.Participant(userID) {
		return nil, matching.ErrNotParticipant
	}
	copied := *m
	return &copied, nil
}

func newChatFixture(status string) (Service, *fakeRepo) {
	repo := newFakeRepo()
	matches := &fakeMatches{matches: map[int64]*matching.Match{
		1: {ID: 1, UserAID: 10, UserBID: 20, InitiatorID: 10, Status: status},
	}}
	return NewService(repo, matches, nil), repo
}

func TestGetOrCreateChat(t *testing.T) {
	service, _ := newChatFixture(matching.StatusAccepted)
	ctx := context.Background()

	chat, err := service.GetOrCreateChat(ctx, 10, 1)
	if err != nil {
		t.Fatalf("GetOrCreateChat: %v", err)
	}
	if chat.UserAID != 10 || chat.UserBID != 20 {
		t.Errorf("unexpected participants: %+v", chat)
	}

	// Second call from the other side returns the same chat
	again, err := service.GetOrCreateChat(ctx, 20, 1)
	if err != nil {
		t.Fatalf("GetOrCreateChat again: %v", err)
	}
	if again.ID != chat.ID {
		t.Errorf("got chat %d, want same chat %d", again.ID, chat.ID)
	}
}

func TestGetOrCreateChat_RequiresAcceptedMatch(t *testing.T) {
	service, _ := newChatFixture(matching.StatusPending)

	_, err := service.GetOrCreateChat(context.Background(), 10, 1)
	if !errors.Is(err, matching.ErrMatchNotAccepted) {
		t.Errorf("got %v, want ErrMatchNotAccepted", err)
	}
}

func TestGetOrCreateChat_OutsiderForbidden(t *testing.T) {
	service, _ := newChatFixture(matching.StatusAccepted)

	_, err := service.GetOrCreateChat(context.Background(), 30, 1)
	if !errors.Is(err, matching.ErrNotParticipant) {
		t.Errorf("got %v, want ErrNotParticipant", err)
	}
}

func TestSendMessage(t *testing.T) {
	service, _ := newChatFixture(matching.StatusAccepted)
	ctx := context.Background()

	chat, _ := service.GetOrCreateChat(ctx, 10, 1)

	msg, err := service.SendMessage(ctx, 10, chat.ID, &SendMessageRequest{Content: "  hello  "})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.Content != "hello" {
		t.Errorf("content = %q, want trimmed %q", msg.Content, "hello")
	}
	if msg.SenderID != 10 {
		t.Errorf("sender = %d, want 10", msg.SenderID)
	}
}

func TestSendMessage_Rejections(t *testing.T) {
	service, _ := newChatFixture(matching.StatusAccepted)
	ctx := context.Background()

	chat, _ := service.GetOrCreateChat(ctx, 10, 1)

	if _, err := service.SendMessage(ctx, 10, chat.ID, &SendMessageRequest{Content: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank content: got %v, want ErrEmptyMessage", err)
	}
	if _, err := service.SendMessage(ctx, 30, chat.ID, &SendMessageRequest{Content: "hi"}); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("outsider: got %v, want ErrNotParticipant", err)
	}
	if _, err := service.SendMessage(ctx, 10, 99, &SendMessageRequest{Content: "hi"}); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("missing chat: got %v, want ErrChatNotFound", err)
	}
}

func TestNotifyTyping_ParticipantOnly(t *testing.T) {
	service, _ := newChatFixture(matching.StatusAccepted)
	ctx := context.Background()

	chat, _ := service.GetOrCreateChat(ctx, 10, 1)

	if err := service.NotifyTyping(ctx, 10, chat.ID); err != nil {
		t.Fatalf("NotifyTyping: %v", err)
	}
	if err := service.NotifyTyping(ctx, 30, chat.ID); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("outsider: got %v, want ErrNotParticipant", err)
	}
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	service, _ := newChatFixture(matching.StatusAccepted)
	ctx := context.Background()

	chat, _ := service.GetOrCreateChat(ctx, 10, 1)
	service.SendMessage(ctx, 10, chat.ID, &SendMessageRequest{Content: "one"})
	service.SendMessage(ctx, 10, chat.ID, &SendMessageRequest{Content: "two"})

	count, err := service.UnreadCount(ctx, 20)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}

	// Sender's own messages are never unread for them
	if count, _ := service.UnreadCount(ctx, 10); count != 0 {
		t.Errorf("sender unread = %d, want 0", count)
	}

	marked, err := service.MarkRead(ctx, 20, chat.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if marked != 2 {
		t.Errorf("marked = %d, want 2", marked)
	}

	if count, _ := service.UnreadCount(ctx, 20); count != 0 {
		t.Errorf("unread after mark = %d, want 0", count)
	}
}

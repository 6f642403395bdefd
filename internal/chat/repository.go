// internal/chat/repository.go
// Data access layer for chats and messages

package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines chat data operations
type Repository interface {
	CreateChat(ctx context.Context, chat *Chat) error
	GetChatByID(ctx context.Context, id int64) (*Chat, error)
	GetChatByMatchID(ctx context.Context, matchID int64) (*Chat, error)
	ListChatsForUser(ctx context.Context, userID int64) ([]*ChatSummary, error)
	CreateMessage(ctx context.Context, message *Message) error
	ListMessages(ctx context.Context, chatID int64, page, limit int) ([]*Message, int, error)
	MarkRead(ctx context.Context, chatID, readerID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL chat repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateChat(ctx context.Context, chat *Chat) error {
	query := `
		INSERT INTO chats (match_id, user_a_id, user_b_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (match_id) DO NOTHING
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		chat.MatchID, chat.UserAID, chat.UserBID,
	).Scan(&chat.ID, &chat.CreatedAt)
	if err != nil {
		// Conflict returns no rows; the chat already exists for this match
		if errors.Is(err, sql.ErrNoRows) {
			existing, gerr := r.GetChatByMatchID(ctx, chat.MatchID)
			if gerr != nil {
				return gerr
			}
			*chat = *existing
			return nil
		}
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetChatByID(ctx context.Context, id int64) (*Chat, error) {
	var chat Chat
	query := `SELECT id, match_id, user_a_id, user_b_id, created_at FROM chats WHERE id = $1`
	err := r.db.GetContext(ctx, &chat, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}

func (r *postgresRepository) GetChatByMatchID(ctx context.Context, matchID int64) (*Chat, error) {
	var chat Chat
	query := `SELECT id, match_id, user_a_id, user_b_id, created_at FROM chats WHERE match_id = $1`
	err := r.db.GetContext(ctx, &chat, query, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to get chat by match: %w", err)
	}
	return &chat, nil
}

func (r *postgresRepository) ListChatsForUser(ctx context.Context, userID int64) ([]*ChatSummary, error) {
	query := `
		SELECT c.id, c.match_id, c.user_a_id, c.user_b_id, c.created_at
		FROM chats c
		WHERE c.user_a_id = $1 OR c.user_b_id = $1
		ORDER BY c.created_at DESC`

	var chats []*Chat
	if err := r.db.SelectContext(ctx, &chats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	summaries := make([]*ChatSummary, 0, len(chats))
	for _, c := range chats {
		summary := &ChatSummary{Chat: c}

		var last Message
		lastQuery := `
			SELECT id, chat_id, sender_id, content, read_at, created_at
			FROM chat_messages
			WHERE chat_id = $1
			ORDER BY created_at DESC
			LIMIT 1`
		err := r.db.GetContext(ctx, &last, lastQuery, c.ID)
		if err == nil {
			summary.LastMessage = &last
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get last message: %w", err)
		}

		unreadQuery := `
			SELECT COUNT(*) FROM chat_messages
			WHERE chat_id = $1 AND sender_id != $2 AND read_at IS NULL`
		if err := r.db.GetContext(ctx, &summary.UnreadCount, unreadQuery, c.ID, userID); err != nil {
			return nil, fmt.Errorf("failed to count unread: %w", err)
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *postgresRepository) CreateMessage(ctx context.Context, message *Message) error {
	query := `
		INSERT INTO chat_messages (chat_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		message.ChatID, message.SenderID, message.Content,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListMessages returns messages newest-first
func (r *postgresRepository) ListMessages(ctx context.Context, chatID int64, page, limit int) ([]*Message, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM chat_messages WHERE chat_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, chatID); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	offset := (page - 1) * limit
	query := `
		SELECT id, chat_id, sender_id, content, read_at, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var messages []*Message
	if err := r.db.SelectContext(ctx, &messages, query, chatID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, total, nil
}

// MarkRead stamps all messages from the other side as read
func (r *postgresRepository) MarkRead(ctx context.Context, chatID, readerID int64) (int64, error) {
	query := `
		UPDATE chat_messages
		SET read_at = NOW()
		WHERE chat_id = $1 AND sender_id != $2 AND read_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, chatID, readerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark read: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *postgresRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM chat_messages m
		JOIN chats c ON c.id = m.chat_id
		WHERE m.sender_id != $1 AND m.read_at IS NULL
		  AND (c.user_a_id = $1 OR c.user_b_id = $1)`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread: %w", err)
	}
	return count, nil
}

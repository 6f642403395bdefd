// internal/matching/repository.go
// Data access layer for matches and sessions

package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines match data operations
type Repository interface {
	CreateMatch(ctx context.Context, match *Match) error
	GetMatchByID(ctx context.Context, id int64) (*Match, error)
	// GetActiveMatchBetween finds a pending or accepted match between the
	// pair in either direction.
	GetActiveMatchBetween(ctx context.Context, userA, userB int64) (*Match, error)
	ListMatchesForUser(ctx context.Context, userID int64, status string, page, limit int) ([]*Match, int, error)
	UpdateMatchStatus(ctx context.Context, id int64, status string) error

	CreateSession(ctx context.Context, session *Session) error
	GetSessionByID(ctx context.Context, id int64) (*Session, error)
	ListSessionsForMatch(ctx context.Context, matchID int64) ([]*Session, error)
	UpdateSessionStatus(ctx context.Context, id int64, status string) error
	SetSessionRating(ctx context.Context, id int64, bySideA bool, rating int) error
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL match repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const matchColumns = `id, user_a_id, user_b_id, initiator_id, status, score,
	exchanges, message, created_at, updated_at`

const sessionColumns = `id, match_id, scheduled_at, duration_minutes, notes, status,
	rating_by_a, rating_by_b, completed_at, created_at, updated_at`

func (r *postgresRepository) CreateMatch(ctx context.Context, match *Match) error {
	query := `
		INSERT INTO matches (user_a_id, user_b_id, initiator_id, status, score,
			exchanges, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		match.UserAID, match.UserBID, match.InitiatorID, match.Status,
		match.Score, match.Exchanges, match.Message,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateMatch
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetMatchByID(ctx context.Context, id int64) (*Match, error) {
	var match Match
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE id = $1`, matchColumns)
	err := r.db.GetContext(ctx, &match, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

func (r *postgresRepository) GetActiveMatchBetween(ctx context.Context, userA, userB int64) (*Match, error) {
	var match Match
	query := fmt.Sprintf(`
		SELECT %s FROM matches
		WHERE ((user_a_id = $1 AND user_b_id = $2) OR (user_a_id = $2 AND user_b_id = $1))
		  AND status IN ('pending', 'accepted')
		ORDER BY created_at DESC
		LIMIT 1`, matchColumns)

	err := r.db.GetContext(ctx, &match, query, userA, userB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to check existing match: %w", err)
	}
	return &match, nil
}

func (r *postgresRepository) ListMatchesForUser(ctx context.Context, userID int64, status string, page, limit int) ([]*Match, int, error) {
	where := `(user_a_id = $1 OR user_b_id = $1)`
	args := []interface{}{userID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM matches WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count matches: %w", err)
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s FROM matches
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d`, matchColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var matches []*Match
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, total, nil
}

func (r *postgresRepository) UpdateMatchStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *postgresRepository) CreateSession(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO match_sessions (match_id, scheduled_at, duration_minutes, notes,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		session.MatchID, session.ScheduledAt, session.DurationMinutes,
		session.Notes, session.Status,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetSessionByID(ctx context.Context, id int64) (*Session, error) {
	var session Session
	query := fmt.Sprintf(`SELECT %s FROM match_sessions WHERE id = $1`, sessionColumns)
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *postgresRepository) ListSessionsForMatch(ctx context.Context, matchID int64) ([]*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM match_sessions
		WHERE match_id = $1
		ORDER BY scheduled_at ASC`, sessionColumns)

	var sessions []*Session
	if err := r.db.SelectContext(ctx, &sessions, query, matchID); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *postgresRepository) UpdateSessionStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE match_sessions
		SET status = $1,
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
		    updated_at = NOW()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *postgresRepository) SetSessionRating(ctx context.Context, id int64, bySideA bool, rating int) error {
	column := "rating_by_b"
	if bySideA {
		column = "rating_by_a"
	}

	query := fmt.Sprintf(`
		UPDATE match_sessions
		SET %s = $1, updated_at = NOW()
		WHERE id = $2 AND %s IS NULL`, column, column)

	result, err := r.db.ExecContext(ctx, query, rating, id)
	if err != nil {
		return fmt.Errorf("failed to set session rating: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrAlreadyRated
	}
	return nil
}

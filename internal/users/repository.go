// internal/users/repository.go
// Data access layer for users

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines user data operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdateSkillsOffered(ctx context.Context, userID int64, skills SkillsOffered) error
	UpdateSkillsWanted(ctx context.Context, userID int64, skills SkillsWanted) error
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
	TouchLastActive(ctx context.Context, userID int64) error
	ApplyRating(ctx context.Context, userID int64, rating int) error
	AddSkillPoints(ctx context.Context, userID int64, points int) error
	Search(ctx context.Context, req *SearchRequest) ([]*User, int, error)
	FindCandidates(ctx context.Context, excludeID int64, offeredNames, wantedNames []string, max int) ([]*User, error)
	GetDashboardStats(ctx context.Context, userID int64) (*DashboardStats, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, name, email, phone, password_hash, avatar_url, bio, city, state,
	skills_offered, skills_wanted, rating_average, rating_count, skill_points,
	is_admin, last_active_at, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (name, email, phone, password_hash, avatar_url, bio, city, state,
			skills_offered, skills_wanted, last_active_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), NOW())
		RETURNING id, last_active_at, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Phone, user.PasswordHash, user.AvatarURL,
		user.Bio, user.City, user.State, user.SkillsOffered, user.SkillsWanted,
	).Scan(&user.ID, &user.LastActiveAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = LOWER($1)`, userColumns)
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $1, bio = $2, city = $3, state = $4, phone = $5, updated_at = NOW()
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Bio, user.City, user.State, user.Phone, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateSkillsOffered(ctx context.Context, userID int64, skills SkillsOffered) error {
	query := `UPDATE users SET skills_offered = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, skills, userID)
	if err != nil {
		return fmt.Errorf("failed to update offered skills: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateSkillsWanted(ctx context.Context, userID int64, skills SkillsWanted) error {
	query := `UPDATE users SET skills_wanted = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, skills, userID)
	if err != nil {
		return fmt.Errorf("failed to update wanted skills: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	query := `UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) TouchLastActive(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_active_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to touch last active: %w", err)
	}
	return nil
}

// ApplyRating folds a new 1-5 session rating into the running average
func (r *postgresRepository) ApplyRating(ctx context.Context, userID int64, rating int) error {
	query := `
		UPDATE users
		SET rating_average = (rating_average * rating_count + $1) / (rating_count + 1),
		    rating_count = rating_count + 1,
		    updated_at = NOW()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, rating, userID)
	if err != nil {
		return fmt.Errorf("failed to apply rating: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) AddSkillPoints(ctx context.Context, userID int64, points int) error {
	query := `UPDATE users SET skill_points = skill_points + $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, points, userID)
	if err != nil {
		return fmt.Errorf("failed to add skill points: %w", err)
	}
	return nil
}

// Search finds users by name, skill name, or city with pagination
func (r *postgresRepository) Search(ctx context.Context, req *SearchRequest) ([]*User, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if req.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR bio ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+req.Query+"%")
		argIdx++
	}
	if req.Skill != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM jsonb_array_elements(skills_offered) s
			WHERE LOWER(s->>'name') = LOWER($%d))`, argIdx))
		args = append(args, req.Skill)
		argIdx++
	}
	if req.City != "" {
		conditions = append(conditions, fmt.Sprintf("city ILIKE $%d", argIdx))
		args = append(args, req.City)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY rating_average DESC, id ASC
		LIMIT $%d OFFSET $%d`, userColumns, where, argIdx, argIdx+1)
	args = append(args, req.Limit, offset)

	var results []*User
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	return results, total, nil
}

// FindCandidates returns users who either offer one of the requester's wanted
// skills or want one of the requester's offered skills. Recently active users
// come first so the pool cap keeps the most promising candidates.
func (r *postgresRepository) FindCandidates(ctx context.Context, excludeID int64, offeredNames, wantedNames []string, max int) ([]*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE id != $1
		  AND (
			EXISTS (
				SELECT 1 FROM jsonb_array_elements(skills_offered) s
				WHERE LOWER(s->>'name') = ANY($2)
			)
			OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(skills_wanted) s
				WHERE LOWER(s->>'name') = ANY($3)
			)
		  )
		ORDER BY last_active_at DESC, id ASC
		LIMIT $4`, userColumns)

	var candidates []*User
	err := r.db.SelectContext(ctx, &candidates, query,
		excludeID, pq.Array(lowerAll(wantedNames)), pq.Array(lowerAll(offeredNames)), max)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	return candidates, nil
}

func (r *postgresRepository) GetDashboardStats(ctx context.Context, userID int64) (*DashboardStats, error) {
	var stats DashboardStats
	query := `
		SELECT
			COUNT(*) FILTER (WHERE m.status = 'pending') AS pending_matches,
			COUNT(*) FILTER (WHERE m.status = 'accepted') AS accepted_matches,
			COUNT(*) FILTER (WHERE m.status = 'completed') AS completed_matches,
			COALESCE((SELECT COUNT(*) FROM match_sessions ms
				JOIN matches mm ON mm.id = ms.match_id
				WHERE mm.user_a_id = $1 OR mm.user_b_id = $1), 0) AS sessions_total,
			COALESCE((SELECT COUNT(*) FROM chat_messages cm
				JOIN chats c ON c.id = cm.chat_id
				WHERE cm.sender_id != $1 AND cm.read_at IS NULL
				  AND (c.user_a_id = $1 OR c.user_b_id = $1)), 0) AS unread_messages
		FROM matches m
		WHERE m.user_a_id = $1 OR m.user_b_id = $1`

	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return &stats, nil
}

func lowerAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToLower(n)
	}
	return out
}

// internal/community/repository.go
// Data access layer for communities

package community

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines community data operations
type Repository interface {
	Create(ctx context.Context, community *Community) error
	GetByID(ctx context.Context, id int64) (*Community, error)
	Update(ctx context.Context, community *Community) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req *ListRequest) ([]*Community, int, error)
	AddMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, communityID, userID int64) (*Member, error)
	RemoveMember(ctx context.Context, communityID, userID int64) error
	UpdateMemberRole(ctx context.Context, communityID, userID int64, role string) error
	ListMembers(ctx context.Context, communityID int64, page, limit int) ([]*Member, int, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL community repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const communityColumns = `c.id, c.name, c.description, c.category, c.skills, c.city, c.state,
	c.is_virtual, c.is_public, c.is_active, c.owner_id, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM community_members m WHERE m.community_id = c.id) AS member_count`

func (r *postgresRepository) Create(ctx context.Context, community *Community) error {
	query := `
		INSERT INTO communities (name, description, category, skills, city, state,
			is_virtual, is_public, is_active, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		community.Name, community.Description, community.Category, community.Skills,
		community.City, community.State, community.IsVirtual, community.IsPublic,
		community.OwnerID,
	).Scan(&community.ID, &community.CreatedAt, &community.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to create community: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Community, error) {
	var community Community
	query := fmt.Sprintf(`SELECT %s FROM communities c WHERE c.id = $1`, communityColumns)
	err := r.db.GetContext(ctx, &community, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommunityNotFound
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return &community, nil
}

func (r *postgresRepository) Update(ctx context.Context, community *Community) error {
	query := `
		UPDATE communities
		SET name = $1, description = $2, category = $3, skills = $4, city = $5,
		    state = $6, is_virtual = $7, is_public = $8, updated_at = NOW()
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		community.Name, community.Description, community.Category, community.Skills,
		community.City, community.State, community.IsVirtual, community.IsPublic,
		community.ID)
	if err != nil {
		return fmt.Errorf("failed to update community: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrCommunityNotFound
	}
	return nil
}

// Delete deactivates the community; rows are kept for member history
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	query := `UPDATE communities SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete community: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrCommunityNotFound
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, req *ListRequest) ([]*Community, int, error) {
	conditions := []string{"c.is_public", "c.is_active"}
	args := []interface{}{}
	argIdx := 1

	if req.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(c.name ILIKE $%d OR c.description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+req.Query+"%")
		argIdx++
	}
	if req.Category != "" {
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", argIdx))
		args = append(args, req.Category)
		argIdx++
	}
	if req.Skill != "" {
		conditions = append(conditions, fmt.Sprintf("$%d ILIKE ANY(c.skills)", argIdx))
		args = append(args, req.Skill)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM communities c WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count communities: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	query := fmt.Sprintf(`
		SELECT %s FROM communities c
		WHERE %s
		ORDER BY member_count DESC, c.id ASC
		LIMIT $%d OFFSET $%d`, communityColumns, where, argIdx, argIdx+1)
	args = append(args, req.Limit, offset)

	var communities []*Community
	if err := r.db.SelectContext(ctx, &communities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list communities: %w", err)
	}
	return communities, total, nil
}

func (r *postgresRepository) AddMember(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO community_members (community_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING joined_at`

	err := r.db.QueryRowContext(ctx, query,
		member.CommunityID, member.UserID, member.Role,
	).Scan(&member.JoinedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetMember(ctx context.Context, communityID, userID int64) (*Member, error) {
	var member Member
	query := `
		SELECT community_id, user_id, role, joined_at
		FROM community_members
		WHERE community_id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &member, query, communityID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

func (r *postgresRepository) RemoveMember(ctx context.Context, communityID, userID int64) error {
	query := `DELETE FROM community_members WHERE community_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, communityID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *postgresRepository) UpdateMemberRole(ctx context.Context, communityID, userID int64, role string) error {
	query := `UPDATE community_members SET role = $1 WHERE community_id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, role, communityID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *postgresRepository) ListMembers(ctx context.Context, communityID int64, page, limit int) ([]*Member, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM community_members WHERE community_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, communityID); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	offset := (page - 1) * limit
	query := `
		SELECT community_id, user_id, role, joined_at
		FROM community_members
		WHERE community_id = $1
		ORDER BY joined_at ASC
		LIMIT $2 OFFSET $3`

	var members []*Member
	if err := r.db.SelectContext(ctx, &members, query, communityID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

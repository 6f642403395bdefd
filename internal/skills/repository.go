// internal/skills/repository.go
// Data access layer for the skill catalog

package skills

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines skill catalog data operations
type Repository interface {
	Create(ctx context.Context, skill *Skill) error
	GetByID(ctx context.Context, id int64) (*Skill, error)
	Update(ctx context.Context, skill *Skill) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req *ListRequest) ([]*Skill, int, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
	Popular(ctx context.Context, limit int) ([]*Skill, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL skill repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const skillColumns = `id, name, category, description, icon, popularity, is_active, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, skill *Skill) error {
	query := `
		INSERT INTO skills (name, category, description, icon, popularity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, TRUE, NOW(), NOW())
		RETURNING id, popularity, is_active, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		skill.Name, skill.Category, skill.Description, skill.Icon,
	).Scan(&skill.ID, &skill.Popularity, &skill.IsActive, &skill.CreatedAt, &skill.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to create skill: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Skill, error) {
	var skill Skill
	query := fmt.Sprintf(`SELECT %s FROM skills WHERE id = $1`, skillColumns)
	err := r.db.GetContext(ctx, &skill, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}
	return &skill, nil
}

func (r *postgresRepository) Update(ctx context.Context, skill *Skill) error {
	query := `
		UPDATE skills
		SET name = $1, category = $2, description = $3, icon = $4,
		    popularity = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		skill.Name, skill.Category, skill.Description, skill.Icon,
		skill.Popularity, skill.IsActive, skill.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to update skill: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSkillNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSkillNotFound
	}
	return nil
}

// List returns active catalog entries, most popular first
func (r *postgresRepository) List(ctx context.Context, req *ListRequest) ([]*Skill, int, error) {
	conditions := []string{"is_active"}
	args := []interface{}{}
	argIdx := 1

	if req.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, req.Category)
		argIdx++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+req.Search+"%")
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM skills WHERE %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count skills: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	query := fmt.Sprintf(`
		SELECT %s FROM skills
		WHERE %s
		ORDER BY popularity DESC, name ASC
		LIMIT $%d OFFSET $%d`, skillColumns, where, argIdx, argIdx+1)
	args = append(args, req.Limit, offset)

	var results []*Skill
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list skills: %w", err)
	}
	return results, total, nil
}

func (r *postgresRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}{}

	query := `
		SELECT category, COUNT(*) AS count
		FROM skills
		WHERE is_active
		GROUP BY category`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count skills by category: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func (r *postgresRepository) Popular(ctx context.Context, limit int) ([]*Skill, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM skills
		WHERE is_active
		ORDER BY popularity DESC, name ASC
		LIMIT $1`, skillColumns)

	var results []*Skill
	if err := r.db.SelectContext(ctx, &results, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list popular skills: %w", err)
	}
	return results, nil
}

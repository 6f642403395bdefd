// internal/skills/service.go
// Skill catalog business logic. Browsing is public; catalog writes are
// restricted to admins.

package skills

import (
	"context"
	"errors"
	"strings"

	"github.com/skillbarter/backend/internal/users"
)

// Common errors
var (
	ErrSkillNotFound   = errors.New("skill not found")
	ErrNameTaken       = errors.New("skill name already in catalog")
	ErrInvalidCategory = errors.New("invalid category")
	ErrAdminOnly       = errors.New("admin access required")
)

// UserDirectory is the view of the user store the catalog needs
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// Service defines skill catalog operations
type Service interface {
	List(ctx context.Context, req *ListRequest) ([]*Skill, int, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	Popular(ctx context.Context) ([]*Skill, error)
	Create(ctx context.Context, actorID int64, req *CreateSkillRequest) (*Skill, error)
	Update(ctx context.Context, actorID, id int64, req *UpdateSkillRequest) (*Skill, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// Popular endpoint size, matching the catalog's fixed top list
const popularLimit = 10

// skillService implements Service
type skillService struct {
	repo      Repository
	directory UserDirectory
}

// NewService creates a skill catalog service
func NewService(repo Repository, directory UserDirectory) Service {
	return &skillService{repo: repo, directory: directory}
}

func (s *skillService) List(ctx context.Context, req *ListRequest) ([]*Skill, int, error) {
	if req.Category != "" && !validCategory(req.Category) {
		return nil, 0, ErrInvalidCategory
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}

// Categories returns every category with its active entry count, in the
// catalog's display order. Empty categories are included with a zero count.
func (s *skillService) Categories(ctx context.Context) ([]CategoryCount, error) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryCount, 0, len(Categories))
	for _, category := range Categories {
		out = append(out, CategoryCount{
			Name:  category,
			Count: counts[category],
			Icon:  CategoryIcon(category),
		})
	}
	return out, nil
}

func (s *skillService) Popular(ctx context.Context) ([]*Skill, error) {
	return s.repo.Popular(ctx, popularLimit)
}

func (s *skillService) Create(ctx context.Context, actorID int64, req *CreateSkillRequest) (*Skill, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if !validCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	skill := &Skill{
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Icon:        req.Icon,
	}
	if skill.Icon == "" {
		skill.Icon = CategoryIcon(skill.Category)
	}

	if err := s.repo.Create(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *skillService) Update(ctx context.Context, actorID, id int64, req *UpdateSkillRequest) (*Skill, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	skill, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		skill.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		if !validCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		skill.Category = *req.Category
	}
	if req.Description != nil {
		skill.Description = strings.TrimSpace(*req.Description)
	}
	if req.Icon != nil {
		skill.Icon = *req.Icon
	}
	if req.Popularity != nil {
		skill.Popularity = *req.Popularity
	}
	if req.IsActive != nil {
		skill.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *skillService) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *skillService) requireAdmin(ctx context.Context, actorID int64) error {
	actor, err := s.directory.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return ErrAdminOnly
	}
	return nil
}

// internal/community/service.go
// Community business logic

package community

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var (
	ErrCommunityNotFound = errors.New("community not found")
	ErrNameTaken         = errors.New("community name already taken")
	ErrAlreadyMember     = errors.New("already a member")
	ErrNotMember         = errors.New("not a member")
	ErrNotOwner          = errors.New("only the owner can do this")
	ErrOwnerCannotLeave  = errors.New("owner cannot leave their community")
)

// Service defines community business operations
type Service interface {
	Create(ctx context.Context, ownerID int64, req *CreateCommunityRequest) (*Community, error)
	Get(ctx context.Context, id int64) (*Community, error)
	Update(ctx context.Context, userID, id int64, req *UpdateCommunityRequest) (*Community, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, req *ListRequest) ([]*Community, int, error)
	Join(ctx context.Context, userID, id int64) (*Member, error)
	Leave(ctx context.Context, userID, id int64) error
	PromoteModerator(ctx context.Context, actorID, id, userID int64) error
	ListMembers(ctx context.Context, id int64, page, limit int) ([]*Member, int, error)
}

// communityService implements Service
type communityService struct {
	repo Repository
}

// NewService creates a community service
func NewService(repo Repository) Service {
	return &communityService{repo: repo}
}

// Create makes a community with the creator as owner and first member
func (s *communityService) Create(ctx context.Context, ownerID int64, req *CreateCommunityRequest) (*Community, error) {
	community := &Community{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Skills:      req.Skills,
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		IsVirtual:   req.IsVirtual,
		IsPublic:    true,
		IsActive:    true,
		OwnerID:     ownerID,
	}
	if req.IsPublic != nil {
		community.IsPublic = *req.IsPublic
	}
	if err := s.repo.Create(ctx, community); err != nil {
		return nil, err
	}

	member := &Member{
		CommunityID: community.ID,
		UserID:      ownerID,
		Role:        RoleOwner,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	community.MemberCount = 1
	return community, nil
}

func (s *communityService) Get(ctx context.Context, id int64) (*Community, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *communityService) Update(ctx context.Context, userID, id int64, req *UpdateCommunityRequest) (*Community, error) {
	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community.OwnerID != userID {
		return nil, ErrNotOwner
	}

	if req.Name != nil {
		community.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		community.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		community.Category = *req.Category
	}
	if req.Skills != nil {
		community.Skills = req.Skills
	}
	if req.City != nil {
		community.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		community.State = strings.TrimSpace(*req.State)
	}
	if req.IsVirtual != nil {
		community.IsVirtual = *req.IsVirtual
	}
	if req.IsPublic != nil {
		community.IsPublic = *req.IsPublic
	}

	if err := s.repo.Update(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *communityService) Delete(ctx context.Context, userID, id int64) error {
	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if community.OwnerID != userID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, id)
}

func (s *communityService) List(ctx context.Context, req *ListRequest) ([]*Community, int, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}

func (s *communityService) Join(ctx context.Context, userID, id int64) (*Member, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	member := &Member{
		CommunityID: id,
		UserID:      userID,
		Role:        RoleMember,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Leave removes the member. Owners must delete or transfer instead.
func (s *communityService) Leave(ctx context.Context, userID, id int64) error {
	member, err := s.repo.GetMember(ctx, id, userID)
	if err != nil {
		return err
	}
	if member.Role == RoleOwner {
		return ErrOwnerCannotLeave
	}
	return s.repo.RemoveMember(ctx, id, userID)
}

func (s *communityService) PromoteModerator(ctx context.Context, actorID, id, userID int64) error {
	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if community.OwnerID != actorID {
		return ErrNotOwner
	}

	member, err := s.repo.GetMember(ctx, id, userID)
	if err != nil {
		return err
	}
	if member.Role == RoleOwner {
		return ErrNotMember
	}
	return s.repo.UpdateMemberRole(ctx, id, userID, RoleModerator)
}

func (s *communityService) ListMembers(ctx context.Context, id int64, page, limit int) ([]*Member, int, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.repo.ListMembers(ctx, id, page, limit)
}

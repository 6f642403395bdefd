// internal/users/service.go
// Business logic for profiles and skill lists

package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
)

// Common errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrSkillExists   = errors.New("skill already in list")
	ErrSkillNotFound = errors.New("skill not in list")
	ErrInvalidSkill  = errors.New("invalid skill")
)

// Service defines user business operations
type Service interface {
	GetProfile(ctx context.Context, userID int64) (*User, error)
	GetPublicProfile(ctx context.Context, userID int64) (*PublicProfile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*User, error)
	AddOfferedSkill(ctx context.Context, userID int64, req *AddOfferedSkillRequest) (*User, error)
	RemoveOfferedSkill(ctx context.Context, userID int64, name string) (*User, error)
	ReplaceOfferedSkills(ctx context.Context, userID int64, req *ReplaceOfferedSkillsRequest) (*User, error)
	AddWantedSkill(ctx context.Context, userID int64, req *AddWantedSkillRequest) (*User, error)
	RemoveWantedSkill(ctx context.Context, userID int64, name string) (*User, error)
	ReplaceWantedSkills(ctx context.Context, userID int64, req *ReplaceWantedSkillsRequest) (*User, error)
	Search(ctx context.Context, req *SearchRequest) ([]*PublicProfile, int, error)
	GetDashboard(ctx context.Context, userID int64) (*Dashboard, error)
	UploadAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error)
	RecordActivity(ctx context.Context, userID int64)
}

// userService implements Service
type userService struct {
	repo     Repository
	uploader Uploader
}

// NewService creates a new user service
func NewService(repo Repository, uploader Uploader) Service {
	return &userService{repo: repo, uploader: uploader}
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *userService) GetPublicProfile(ctx context.Context, userID int64) (*PublicProfile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToPublic(), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.City != nil {
		user.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		user.State = strings.TrimSpace(*req.State)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) AddOfferedSkill(ctx context.Context, userID int64, req *AddOfferedSkillRequest) (*User, error) {
	if !validProficiency(req.Proficiency) {
		return nil, fmt.Errorf("%w: unknown proficiency %q", ErrInvalidSkill, req.Proficiency)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	for _, skill := range user.SkillsOffered {
		if strings.EqualFold(skill.Name, name) {
			return nil, ErrSkillExists
		}
	}

	user.SkillsOffered = append(user.SkillsOffered, OfferedSkill{
		Name:        name,
		Proficiency: req.Proficiency,
		Description: strings.TrimSpace(req.Description),
	})

	if err := s.repo.UpdateSkillsOffered(ctx, userID, user.SkillsOffered); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) RemoveOfferedSkill(ctx context.Context, userID int64, name string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := user.SkillsOffered[:0]
	found := false
	for _, skill := range user.SkillsOffered {
		if strings.EqualFold(skill.Name, name) {
			found = true
			continue
		}
		kept = append(kept, skill)
	}
	if !found {
		return nil, ErrSkillNotFound
	}

	user.SkillsOffered = kept
	if err := s.repo.UpdateSkillsOffered(ctx, userID, user.SkillsOffered); err != nil {
		return nil, err
	}
	return user, nil
}

// ReplaceOfferedSkills swaps the entire teach list in one write
func (s *userService) ReplaceOfferedSkills(ctx context.Context, userID int64, req *ReplaceOfferedSkillsRequest) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	skills := make(SkillsOffered, 0, len(req.Skills))
	seen := map[string]bool{}
	for _, item := range req.Skills {
		if !validProficiency(item.Proficiency) {
			return nil, fmt.Errorf("%w: unknown proficiency %q", ErrInvalidSkill, item.Proficiency)
		}
		name := strings.TrimSpace(item.Name)
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate skill %q", ErrInvalidSkill, name)
		}
		seen[key] = true
		skills = append(skills, OfferedSkill{
			Name:        name,
			Proficiency: item.Proficiency,
			Description: strings.TrimSpace(item.Description),
		})
	}

	user.SkillsOffered = skills
	if err := s.repo.UpdateSkillsOffered(ctx, userID, user.SkillsOffered); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) AddWantedSkill(ctx context.Context, userID int64, req *AddWantedSkillRequest) (*User, error) {
	if !validPriority(req.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidSkill, req.Priority)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	for _, skill := range user.SkillsWanted {
		if strings.EqualFold(skill.Name, name) {
			return nil, ErrSkillExists
		}
	}

	user.SkillsWanted = append(user.SkillsWanted, WantedSkill{
		Name:     name,
		Priority: req.Priority,
	})

	if err := s.repo.UpdateSkillsWanted(ctx, userID, user.SkillsWanted); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) RemoveWantedSkill(ctx context.Context, userID int64, name string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := user.SkillsWanted[:0]
	found := false
	for _, skill := range user.SkillsWanted {
		if strings.EqualFold(skill.Name, name) {
			found = true
			continue
		}
		kept = append(kept, skill)
	}
	if !found {
		return nil, ErrSkillNotFound
	}

	user.SkillsWanted = kept
	if err := s.repo.UpdateSkillsWanted(ctx, userID, user.SkillsWanted); err != nil {
		return nil, err
	}
	return user, nil
}

// ReplaceWantedSkills swaps the entire learn list in one write
func (s *userService) ReplaceWantedSkills(ctx context.Context, userID int64, req *ReplaceWantedSkillsRequest) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	skills := make(SkillsWanted, 0, len(req.Skills))
	seen := map[string]bool{}
	for _, item := range req.Skills {
		if !validPriority(item.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidSkill, item.Priority)
		}
		name := strings.TrimSpace(item.Name)
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate skill %q", ErrInvalidSkill, name)
		}
		seen[key] = true
		skills = append(skills, WantedSkill{Name: name, Priority: item.Priority})
	}

	user.SkillsWanted = skills
	if err := s.repo.UpdateSkillsWanted(ctx, userID, user.SkillsWanted); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Search(ctx context.Context, req *SearchRequest) ([]*PublicProfile, int, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	results, total, err := s.repo.Search(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	profiles := make([]*PublicProfile, 0, len(results))
	for _, u := range results {
		profiles = append(profiles, u.ToPublic())
	}
	return profiles, total, nil
}

func (s *userService) GetDashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetDashboardStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{Profile: user, Stats: stats}, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return "", err
	}

	url, err := s.uploader.Upload(ctx, file, header)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.repo.UpdateAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// RecordActivity bumps last_active_at. Failures are logged, never surfaced,
// since activity tracking must not break the request that triggered it.
func (s *userService) RecordActivity(ctx context.Context, userID int64) {
	if err := s.repo.TouchLastActive(ctx, userID); err != nil {
		log.Printf("Failed to record activity for user %d: %v", userID, err)
	}
}

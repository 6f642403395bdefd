// internal/community/models.go
// Community domain models

package community

import (
	"time"

	"github.com/lib/pq"
)

// Member roles
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleOwner     = "owner"
)

// Community categories
const (
	CategoryTechnology = "technology"
	CategoryLanguage   = "language"
	CategoryArts       = "arts"
	CategoryMusic      = "music"
	CategoryFitness    = "fitness"
	CategoryBusiness   = "business"
	CategoryCrafts     = "crafts"
	CategoryOther      = "other"
)

// Community is a group organized around related skills
type Community struct {
	ID          int64          `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Category    string         `json:"category" db:"category"`
	Skills      pq.StringArray `json:"skills" db:"skills"`
	City        string         `json:"city" db:"city"`
	State       string         `json:"state" db:"state"`
	IsVirtual   bool           `json:"is_virtual" db:"is_virtual"`
	IsPublic    bool           `json:"is_public" db:"is_public"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	OwnerID     int64          `json:"owner_id" db:"owner_id"`
	MemberCount int            `json:"member_count" db:"member_count"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Member is a user's membership in a community
type Member struct {
	CommunityID int64     `json:"community_id" db:"community_id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Role        string    `json:"role" db:"role"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

// CreateCommunityRequest creates a new community
type CreateCommunityRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	Category    string   `json:"category" validate:"required,oneof=technology language arts music fitness business crafts other"`
	Skills      []string `json:"skills" validate:"omitempty,max=10,dive,min=1,max=100"`
	City        string   `json:"city" validate:"omitempty,max=100"`
	State       string   `json:"state" validate:"omitempty,max=100"`
	IsVirtual   bool     `json:"is_virtual"`
	IsPublic    *bool    `json:"is_public,omitempty"`
}

// UpdateCommunityRequest edits a community
type UpdateCommunityRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,oneof=technology language arts music fitness business crafts other"`
	Skills      []string `json:"skills,omitempty" validate:"omitempty,max=10,dive,min=1,max=100"`
	City        *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	State       *string  `json:"state,omitempty" validate:"omitempty,max=100"`
	IsVirtual   *bool    `json:"is_virtual,omitempty"`
	IsPublic    *bool    `json:"is_public,omitempty"`
}

// ListRequest filters the community listing
type ListRequest struct {
	Query    string
	Category string
	Skill    string
	Page     int
	Limit    int
}

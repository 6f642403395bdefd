// internal/users/models.go
// User domain models and DTOs

package users

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Proficiency levels for offered skills
const (
	ProficiencyBeginner     = "Beginner"
	ProficiencyIntermediate = "Intermediate"
	ProficiencyAdvanced     = "Advanced"
	ProficiencyExpert       = "Expert"
)

// Priority levels for wanted skills
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// OfferedSkill is a skill a user can teach
type OfferedSkill struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
	Description string `json:"description,omitempty"`
}

// WantedSkill is a skill a user wants to learn
type WantedSkill struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
}

// SkillsOffered is stored as a JSONB column
type SkillsOffered []OfferedSkill

// Value implements driver.Valuer for JSONB storage
func (s SkillsOffered) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *SkillsOffered) Scan(value interface{}) error {
	if value == nil {
		*s = SkillsOffered{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("skills_offered: expected []byte")
	}
	return json.Unmarshal(b, s)
}

// SkillsWanted is stored as a JSONB column
type SkillsWanted []WantedSkill

// Value implements driver.Valuer for JSONB storage
func (s SkillsWanted) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *SkillsWanted) Scan(value interface{}) error {
	if value == nil {
		*s = SkillsWanted{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("skills_wanted: expected []byte")
	}
	return json.Unmarshal(b, s)
}

// User represents a registered user
type User struct {
	ID            int64         `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	Email         string        `json:"email" db:"email"`
	Phone         string        `json:"phone" db:"phone"`
	PasswordHash  string        `json:"-" db:"password_hash"`
	AvatarURL     string        `json:"avatar_url" db:"avatar_url"`
	Bio           string        `json:"bio" db:"bio"`
	City          string        `json:"city" db:"city"`
	State         string        `json:"state" db:"state"`
	SkillsOffered SkillsOffered `json:"skills_offered" db:"skills_offered"`
	SkillsWanted  SkillsWanted  `json:"skills_wanted" db:"skills_wanted"`
	RatingAverage float64       `json:"rating_average" db:"rating_average"`
	RatingCount   int           `json:"rating_count" db:"rating_count"`
	SkillPoints   int           `json:"skill_points" db:"skill_points"`
	IsAdmin       bool          `json:"is_admin" db:"is_admin"`
	LastActiveAt  time.Time     `json:"last_active_at" db:"last_active_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// PublicProfile is the view of a user exposed to other users
type PublicProfile struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	AvatarURL     string        `json:"avatar_url"`
	Bio           string        `json:"bio"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	SkillsOffered SkillsOffered `json:"skills_offered"`
	SkillsWanted  SkillsWanted  `json:"skills_wanted"`
	RatingAverage float64       `json:"rating_average"`
	RatingCount   int           `json:"rating_count"`
	LastActiveAt  time.Time     `json:"last_active_at"`
}

// ToPublic strips private fields from a user record
func (u *User) ToPublic() *PublicProfile {
	return &PublicProfile{
		ID:            u.ID,
		Name:          u.Name,
		AvatarURL:     u.AvatarURL,
		Bio:           u.Bio,
		City:          u.City,
		State:         u.State,
		SkillsOffered: u.SkillsOffered,
		SkillsWanted:  u.SkillsWanted,
		RatingAverage: u.RatingAverage,
		RatingCount:   u.RatingCount,
		LastActiveAt:  u.LastActiveAt,
	}
}

// UpdateProfileRequest carries editable profile fields
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Bio   *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	City  *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State *string `json:"state,omitempty" validate:"omitempty,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// AddOfferedSkillRequest adds a skill the user can teach
type AddOfferedSkillRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Proficiency string `json:"proficiency" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// AddWantedSkillRequest adds a skill the user wants to learn
type AddWantedSkillRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Priority string `json:"priority" validate:"required,oneof=High Medium Low"`
}

// ReplaceOfferedSkillsRequest replaces the whole teach list
type ReplaceOfferedSkillsRequest struct {
	Skills []AddOfferedSkillRequest `json:"skills" validate:"max=20,dive"`
}

// ReplaceWantedSkillsRequest replaces the whole learn list
type ReplaceWantedSkillsRequest struct {
	Skills []AddWantedSkillRequest `json:"skills" validate:"max=20,dive"`
}

// SearchRequest filters the user search
type SearchRequest struct {
	Query string
	Skill string
	City  string
	Page  int
	Limit int
}

// DashboardStats summarizes a user's activity
type DashboardStats struct {
	PendingMatches   int `json:"pending_matches" db:"pending_matches"`
	AcceptedMatches  int `json:"accepted_matches" db:"accepted_matches"`
	CompletedMatches int `json:"completed_matches" db:"completed_matches"`
	SessionsTotal    int `json:"sessions_total" db:"sessions_total"`
	UnreadMessages   int `json:"unread_messages" db:"unread_messages"`
}

// Dashboard bundles the profile with activity stats
type Dashboard struct {
	Profile *User           `json:"profile"`
	Stats   *DashboardStats `json:"stats"`
}

// Validation helpers shared by service methods

func validProficiency(p string) bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert:
		return true
	}
	return false
}

func validPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

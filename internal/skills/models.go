// internal/skills/models.go
// Skill catalog domain models

package skills

import "time"

// Catalog categories
const (
	CategoryTechnology    = "Technology"
	CategoryLanguages     = "Languages"
	CategoryArtsCrafts    = "Arts & Crafts"
	CategoryProfessional  = "Professional"
	CategoryLifeSkills    = "Life Skills"
	CategoryAcademic      = "Academic"
	CategorySportsFitness = "Sports & Fitness"
	CategoryCulinary      = "Culinary"
	CategoryMusic         = "Music"
	CategoryOther         = "Other"
)

// Categories lists every catalog category in display order
var Categories = []string{
	CategoryTechnology,
	CategoryLanguages,
	CategoryArtsCrafts,
	CategoryProfessional,
	CategoryLifeSkills,
	CategoryAcademic,
	CategorySportsFitness,
	CategoryCulinary,
	CategoryMusic,
	CategoryOther,
}

var categoryIcons = map[string]string{
	CategoryTechnology:    "💻",
	CategoryLanguages:     "🗣️",
	CategoryArtsCrafts:    "🎨",
	CategoryProfessional:  "💼",
	CategoryLifeSkills:    "🏠",
	CategoryAcademic:      "📚",
	CategorySportsFitness: "⚽",
	CategoryCulinary:      "👨‍🍳",
	CategoryMusic:         "🎵",
	CategoryOther:         "🔧",
}

// CategoryIcon returns the display icon for a category
func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return categoryIcons[CategoryOther]
}

// Skill is one catalog entry users can browse when filling their lists
type Skill struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Icon        string    `json:"icon" db:"icon"`
	Popularity  int       `json:"popularity" db:"popularity"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CategoryCount is a category with its number of active skills
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Icon  string `json:"icon"`
}

// CreateSkillRequest adds a catalog entry
type CreateSkillRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"omitempty,max=200"`
	Icon        string `json:"icon" validate:"omitempty,max=16"`
}

// UpdateSkillRequest edits a catalog entry
type UpdateSkillRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=200"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=16"`
	Popularity  *int    `json:"popularity,omitempty" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ListRequest filters the catalog listing
type ListRequest struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

func validCategory(category string) bool {
	_, ok := categoryIcons[category]
	return ok
}

// internal/matching/models.go
// Matching domain models

package matching

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/skillbarter/backend/internal/users"
)

// Match statuses
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Session statuses
const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// Weights control the contribution of each compatibility component.
// They must sum to 1.0.
type Weights struct {
	SkillMatch   float64
	Location     float64
	Proficiency  float64
	Rating       float64
	Availability float64
}

// DefaultWeights returns the standard scoring weights
func DefaultWeights() Weights {
	return Weights{
		SkillMatch:   0.4,
		Location:     0.2,
		Proficiency:  0.2,
		Rating:       0.1,
		Availability: 0.1,
	}
}

// ExchangeOffer describes one direction of a proposed skill exchange:
// the teacher offers a skill the learner wants.
type ExchangeOffer struct {
	TeacherID   int64  `json:"teacher_id"`
	LearnerID   int64  `json:"learner_id"`
	SkillName   string `json:"skill_name"`
	Proficiency string `json:"proficiency"`
	Priority    string `json:"priority"`
}

// ExchangeOffers is stored as a JSONB column on matches
type ExchangeOffers []ExchangeOffer

// Value implements driver.Valuer for JSONB storage
func (e ExchangeOffers) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner for JSONB retrieval
func (e *ExchangeOffers) Scan(value interface{}) error {
	if value == nil {
		*e = ExchangeOffers{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("exchanges: expected []byte")
	}
	return json.Unmarshal(b, e)
}

// PotentialMatch is a scored discovery result
type PotentialMatch struct {
	User      *users.PublicProfile `json:"user"`
	Score     int                  `json:"score"`
	Exchanges ExchangeOffers       `json:"exchanges"`
}

// Match is a persisted exchange agreement between two users.
// Score and exchanges are frozen at creation time.
type Match struct {
	ID          int64          `json:"id" db:"id"`
	UserAID     int64          `json:"user_a_id" db:"user_a_id"`
	UserBID     int64          `json:"user_b_id" db:"user_b_id"`
	InitiatorID int64          `json:"initiator_id" db:"initiator_id"`
	Status      string         `json:"status" db:"status"`
	Score       int            `json:"score" db:"score"`
	Exchanges   ExchangeOffers `json:"exchanges" db:"exchanges"`
	Message     string         `json:"message" db:"message"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Participant reports whether a user is one of the match's two sides
func (m *Match) Participant(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherParticipant returns the ID of the opposite side
func (m *Match) OtherParticipant(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// Session is a scheduled meeting within an accepted match
type Session struct {
	ID              int64      `json:"id" db:"id"`
	MatchID         int64      `json:"match_id" db:"match_id"`
	ScheduledAt     time.Time  `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	Notes           string     `json:"notes" db:"notes"`
	Status          string     `json:"status" db:"status"`
	RatingByA       *int       `json:"rating_by_a" db:"rating_by_a"`
	RatingByB       *int       `json:"rating_by_b" db:"rating_by_b"`
	CompletedAt     *time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateMatchRequest initiates a match with another user
type CreateMatchRequest struct {
	TargetUserID int64  `json:"target_user_id" validate:"required"`
	Message      string `json:"message" validate:"omitempty,max=500"`
}

// RespondMatchRequest accepts or rejects a pending match
type RespondMatchRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}

// ScheduleSessionRequest schedules a session within an accepted match
type ScheduleSessionRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gte=15,lte=480"`
	Notes           string    `json:"notes" validate:"omitempty,max=1000"`
}

// RateSessionRequest records a 1-5 rating for a completed session
type RateSessionRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

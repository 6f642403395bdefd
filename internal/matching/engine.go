// internal/matching/engine.go
// Deterministic compatibility scoring between two users

package matching

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/skillbarter/backend/internal/users"
)

// proficiencyBaseline stands in for a learned proficiency component.
// TODO: derive from the gap between offered proficiency and learner history
// once session outcomes are tracked.
const proficiencyBaseline = 0.8

var priorityOrder = map[string]int{
	users.PriorityHigh:   3,
	users.PriorityMedium: 2,
	users.PriorityLow:    1,
}

// Engine computes compatibility scores and exchange proposals.
// Scoring is pure: the same inputs always produce the same score.
type Engine struct {
	weights Weights
	now     func() time.Time
}

// NewEngine creates a scoring engine with the given weights
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights, now: time.Now}
}

// CalculateMatchScore returns an integer compatibility score in [0, 100].
// The score is symmetric: swapping the two users never changes it.
func (e *Engine) CalculateMatchScore(a, b *users.User) int {
	total := e.weights.SkillMatch*skillMatchScore(a, b) +
		e.weights.Location*locationScore(a, b) +
		e.weights.Proficiency*proficiencyBaseline +
		e.weights.Rating*ratingScore(a, b) +
		e.weights.Availability*e.availabilityScore(a, b)

	return int(math.Round(total * 100))
}

// skillMatchScore measures bidirectional skill overlap. Each of a's offered
// skills that b wants counts once, and each of a's wanted skills that b
// offers counts once, against the maximum possible pairings.
func skillMatchScore(a, b *users.User) float64 {
	denom := minInt(len(a.SkillsOffered), len(b.SkillsWanted)) +
		minInt(len(a.SkillsWanted), len(b.SkillsOffered))
	if denom == 0 {
		return 0
	}

	matches := 0
	for _, offered := range a.SkillsOffered {
		if findWanted(b.SkillsWanted, offered.Name) != nil {
			matches++
		}
	}
	for _, wanted := range a.SkillsWanted {
		if findOffered(b.SkillsOffered, wanted.Name) != nil {
			matches++
		}
	}

	return float64(matches) / float64(denom)
}

// locationScore rewards proximity. A missing city means location is unknown
// and scores neutral.
func locationScore(a, b *users.User) float64 {
	if a.City == "" || b.City == "" {
		return 0.5
	}
	if a.City == b.City {
		return 1.0
	}
	if a.State != "" && b.State != "" && a.State == b.State {
		return 0.7
	}
	return 0.3
}

// ratingScore normalizes the mean of both users' average ratings to [0, 1]
func ratingScore(a, b *users.User) float64 {
	return (a.RatingAverage + b.RatingAverage) / 2 / 5
}

// availabilityScore scores by how recently both users were active
func (e *Engine) availabilityScore(a, b *users.User) float64 {
	now := e.now()
	daysA := now.Sub(a.LastActiveAt).Hours() / 24
	daysB := now.Sub(b.LastActiveAt).Hours() / 24
	avgDays := (daysA + daysB) / 2

	switch {
	case avgDays <= 1:
		return 1.0
	case avgDays <= 3:
		return 0.8
	case avgDays <= 7:
		return 0.5
	default:
		return 0.2
	}
}

// FindBestExchange proposes up to two exchange directions between two users,
// highest learner priority first. Exchanges where a teaches b are generated
// before the reverse direction, and the stable sort preserves that order on
// priority ties.
func (e *Engine) FindBestExchange(a, b *users.User) ExchangeOffers {
	var exchanges ExchangeOffers

	for _, offered := range a.SkillsOffered {
		if wanted := findWanted(b.SkillsWanted, offered.Name); wanted != nil {
			exchanges = append(exchanges, ExchangeOffer{
				TeacherID:   a.ID,
				LearnerID:   b.ID,
				SkillName:   offered.Name,
				Proficiency: offered.Proficiency,
				Priority:    wanted.Priority,
			})
		}
	}
	for _, offered := range b.SkillsOffered {
		if wanted := findWanted(a.SkillsWanted, offered.Name); wanted != nil {
			exchanges = append(exchanges, ExchangeOffer{
				TeacherID:   b.ID,
				LearnerID:   a.ID,
				SkillName:   offered.Name,
				Proficiency: offered.Proficiency,
				Priority:    wanted.Priority,
			})
		}
	}

	sort.SliceStable(exchanges, func(i, j int) bool {
		return priorityOrder[exchanges[i].Priority] > priorityOrder[exchanges[j].Priority]
	})

	if len(exchanges) > 2 {
		exchanges = exchanges[:2]
	}
	return exchanges
}

// findWanted returns the first wanted skill matching name, case-insensitively
func findWanted(skills users.SkillsWanted, name string) *users.WantedSkill {
	for i := range skills {
		if strings.EqualFold(skills[i].Name, name) {
			return &skills[i]
		}
	}
	return nil
}

// findOffered returns the first offered skill matching name, case-insensitively
func findOffered(skills users.SkillsOffered, name string) *users.OfferedSkill {
	for i := range skills {
		if strings.EqualFold(skills[i].Name, name) {
			return &skills[i]
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

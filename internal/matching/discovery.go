// internal/matching/discovery.go
// Candidate discovery and ranking

package matching

import (
	"context"
	"sort"

	"github.com/skillbarter/backend/internal/users"
)

// UserDirectory is the view of the user store the discovery pipeline needs
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
	FindCandidates(ctx context.Context, excludeID int64, offeredNames, wantedNames []string, max int) ([]*users.User, error)
}

// Discovery finds and ranks potential exchange partners
type Discovery struct {
	directory UserDirectory
	engine    *Engine
	poolSize  int
}

// NewDiscovery creates a discovery pipeline.
// poolSize caps how many candidates are pulled from the directory per query.
func NewDiscovery(directory UserDirectory, engine *Engine, poolSize int) *Discovery {
	if poolSize < 1 {
		poolSize = 50
	}
	return &Discovery{
		directory: directory,
		engine:    engine,
		poolSize:  poolSize,
	}
}

// FindPotentialMatches scores candidates against the requester and returns
// the top results ordered by score descending. The sort is stable, so
// candidates with equal scores keep the directory's ordering.
func (d *Discovery) FindPotentialMatches(ctx context.Context, userID int64, limit int) ([]*PotentialMatch, error) {
	requester, err := d.directory.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	offeredNames := make([]string, 0, len(requester.SkillsOffered))
	for _, s := range requester.SkillsOffered {
		offeredNames = append(offeredNames, s.Name)
	}
	wantedNames := make([]string, 0, len(requester.SkillsWanted))
	for _, s := range requester.SkillsWanted {
		wantedNames = append(wantedNames, s.Name)
	}

	candidates, err := d.directory.FindCandidates(ctx, userID, offeredNames, wantedNames, d.poolSize)
	if err != nil {
		return nil, err
	}

	results := make([]*PotentialMatch, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, &PotentialMatch{
			User:      candidate.ToPublic(),
			Score:     d.engine.CalculateMatchScore(requester, candidate),
			Exchanges: d.engine.FindBestExchange(requester, candidate),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Preview scores a specific pair without persisting anything
func (d *Discovery) Preview(ctx context.Context, userID, otherID int64) (*PotentialMatch, error) {
	requester, err := d.directory.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := d.directory.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}

	return &PotentialMatch{
		User:      other.ToPublic(),
		Score:     d.engine.CalculateMatchScore(requester, other),
		Exchanges: d.engine.FindBestExchange(requester, other),
	}, nil
}

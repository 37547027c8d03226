package brackets

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/openarena/matchup-engine/models"
)

type Policy string

const (
	PolicyNone    Policy = "none"
	PolicyShuffle Policy = "shuffle"
	PolicySeeded  Policy = "seeded"
)

// RatingSource resolves per-user ratings for a category. Implementations must
// return an entry for every requested user (defaulting absent careers).
type RatingSource interface {
	Ratings(ctx context.Context, userIDs []int, categoryID int) (map[int]int, error)
}

// Seeder orders rosters according to a seeding policy.
type Seeder struct {
	ratings RatingSource

	mu  sync.Mutex // shuffles may run from concurrent scheduler jobs
	rng *rand.Rand
}

// NewSeeder builds a Seeder. A nil rng gets a time-based source; tests inject
// a fixed seed for deterministic shuffles.
func NewSeeder(ratings RatingSource, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Seeder{ratings: ratings, rng: rng}
}

// Order returns a new slice; the input is never mutated.
//
// PolicyNone keeps registration order. PolicyShuffle is a uniform Fisher-Yates
// permutation. PolicySeeded sorts descending by average member rating, stable
// on ties, with members lacking a career record counted at models.DefaultElo
// and empty rosters averaging to models.DefaultElo.
func (s *Seeder) Order(ctx context.Context, rosters []*models.Roster, policy Policy, categoryID int) ([]*models.Roster, error) {
	ordered := make([]*models.Roster, len(rosters))
	copy(ordered, rosters)

	switch policy {
	case PolicyNone:
		return ordered, nil

	case PolicyShuffle:
		s.mu.Lock()
		for i := len(ordered) - 1; i > 0; i-- {
			j := s.rng.Intn(i + 1)
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
		s.mu.Unlock()
		return ordered, nil

	case PolicySeeded:
		averages, err := s.RosterAverages(ctx, rosters, categoryID)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			return averages[ordered[i].ID] > averages[ordered[j].ID]
		})
		return ordered, nil

	default:
		return nil, fmt.Errorf("unknown seeding policy %q", policy)
	}
}

// RosterAverages resolves the average member rating per roster id in a single
// rating lookup. Rosters with no members average to models.DefaultElo.
func (s *Seeder) RosterAverages(ctx context.Context, rosters []*models.Roster, categoryID int) (map[int]float64, error) {
	userIDs := make([]int, 0)
	seen := make(map[int]struct{})
	for _, roster := range rosters {
		for _, userID := range roster.MemberIDs {
			if _, ok := seen[userID]; ok {
				continue
			}
			seen[userID] = struct{}{}
			userIDs = append(userIDs, userID)
		}
	}

	ratings, err := s.ratings.Ratings(ctx, userIDs, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ratings for category %d: %w", categoryID, err)
	}

	averages := make(map[int]float64, len(rosters))
	for _, roster := range rosters {
		averages[roster.ID] = averageRating(roster.MemberIDs, ratings)
	}
	return averages, nil
}

func averageRating(memberIDs []int, ratings map[int]int) float64 {
	if len(memberIDs) == 0 {
		return float64(models.DefaultElo)
	}
	sum := 0
	for _, userID := range memberIDs {
		if elo, ok := ratings[userID]; ok {
			sum += elo
		} else {
			sum += models.DefaultElo
		}
	}
	return float64(sum) / float64(len(memberIDs))
}

package services

import (
	"context"
	"fmt"

	"github.com/openarena/matchup-engine/models"
	"github.com/openarena/matchup-engine/repositories"
)

// RankingService resolves per-user ratings for a category, substituting
// models.DefaultElo for users without a career record. Pure read; storage
// errors propagate. Satisfies brackets.RatingSource.
type RankingService struct {
	careerRepo repositories.CareerRepository
}

func NewRankingService(careerRepo repositories.CareerRepository) *RankingService {
	return &RankingService{careerRepo: careerRepo}
}

func (s *RankingService) Ratings(ctx context.Context, userIDs []int, categoryID int) (map[int]int, error) {
	stored, err := s.careerRepo.GetEloByUserIDs(ctx, userIDs, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load careers for category %d: %w", categoryID, err)
	}

	ratings := make(map[int]int, len(userIDs))
	for _, userID := range userIDs {
		if elo, ok := stored[userID]; ok {
			ratings[userID] = elo
		} else {
			ratings[userID] = models.DefaultElo
		}
	}
	return ratings, nil
}

package services

import (
	"context"
	"fmt"

	"github.com/openarena/matchup-engine/models"
	"github.com/openarena/matchup-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// StageBracket is everything a caller needs to render a stage's bracket:
// rounds, matchups, which roster sits in which matchup, and the parent
// linkage that reconstructs bracket ancestry.
type StageBracket struct {
	Stage       *models.Stage                    `json:"stage"`
	Rounds      []*models.StageRound             `json:"rounds"`
	Matchups    []*models.Matchup                `json:"matchups"`
	RosterLinks []*models.RosterToMatchup        `json:"roster_links"`
	ParentLinks []*models.MatchupToParentMatchup `json:"parent_links"`
	Scores      []*models.Score                  `json:"scores"`
}

type BracketViewService struct {
	stageRepo   repositories.StageRepository
	roundRepo   repositories.StageRoundRepository
	matchupRepo repositories.MatchupRepository
	scoreRepo   repositories.ScoreRepository
}

func NewBracketViewService(
	stageRepo repositories.StageRepository,
	roundRepo repositories.StageRoundRepository,
	matchupRepo repositories.MatchupRepository,
	scoreRepo repositories.ScoreRepository,
) *BracketViewService {
	return &BracketViewService{
		stageRepo:   stageRepo,
		roundRepo:   roundRepo,
		matchupRepo: matchupRepo,
		scoreRepo:   scoreRepo,
	}
}

// GetStageBracket assembles the persisted bracket of a stage. The per-entity
// reads are independent, so they run in parallel.
func (s *BracketViewService) GetStageBracket(ctx context.Context, stageID int) (*StageBracket, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}

	bracket := &StageBracket{Stage: stage}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rounds, err := s.roundRepo.ListByStage(gCtx, stageID)
		if err != nil {
			return err
		}
		bracket.Rounds = rounds
		return nil
	})
	g.Go(func() error {
		matchups, err := s.matchupRepo.ListByStage(gCtx, stageID)
		if err != nil {
			return err
		}
		bracket.Matchups = matchups
		return nil
	})
	g.Go(func() error {
		links, err := s.matchupRepo.ListRosterLinksByStage(gCtx, stageID)
		if err != nil {
			return err
		}
		bracket.RosterLinks = links
		return nil
	})
	g.Go(func() error {
		links, err := s.matchupRepo.ListParentLinksByStage(gCtx, stageID)
		if err != nil {
			return err
		}
		bracket.ParentLinks = links
		return nil
	})
	g.Go(func() error {
		scores, err := s.scoreRepo.ListByStage(gCtx, stageID)
		if err != nil {
			return err
		}
		bracket.Scores = scores
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble bracket for stage %d: %w", stageID, err)
	}
	return bracket, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/openarena/matchup-engine/brackets"
	"github.com/openarena/matchup-engine/models"
	"github.com/openarena/matchup-engine/repositories"
)

// MatchupService is the coordinator in front of the bracket generators: it
// gates double generation, dispatches on stage type and persists the produced
// plan in a single transaction.
type MatchupService struct {
	txRunner       repositories.TxRunner
	tournamentRepo repositories.TournamentRepository
	rosterRepo     repositories.RosterRepository
	roundRepo      repositories.StageRoundRepository
	matchupRepo    repositories.MatchupRepository
	scoreRepo      repositories.ScoreRepository
	groupGen       *brackets.GroupStageGenerator
	elimGen        *brackets.EliminationGenerator
	logger         *slog.Logger
}

func NewMatchupService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	rosterRepo repositories.RosterRepository,
	roundRepo repositories.StageRoundRepository,
	matchupRepo repositories.MatchupRepository,
	scoreRepo repositories.ScoreRepository,
	groupGen *brackets.GroupStageGenerator,
	elimGen *brackets.EliminationGenerator,
	logger *slog.Logger,
) *MatchupService {
	return &MatchupService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		rosterRepo:     rosterRepo,
		roundRepo:      roundRepo,
		matchupRepo:    matchupRepo,
		scoreRepo:      scoreRepo,
		groupGen:       groupGen,
		elimGen:        elimGen,
		logger:         logger,
	}
}

// GenerateMatchupsForStage builds and persists the full matchup set for a
// stage. Generation happens at most once per stage: a repeat call is a no-op,
// and a concurrent duplicate run loses on the round-number unique constraint
// instead of double-writing. An unsupported stage type is logged and skipped,
// not an error.
func (s *MatchupService) GenerateMatchupsForStage(ctx context.Context, stage *models.Stage, opts brackets.Options) error {
	exists, err := s.matchupRepo.ExistsByStage(ctx, stage.ID)
	if err != nil {
		return fmt.Errorf("failed to check existing matchups for stage %d: %w", stage.ID, err)
	}
	if exists {
		s.logger.Info("matchups already generated, skipping", slog.Int("stage_id", stage.ID))
		return nil
	}

	var generator brackets.Generator
	needsCategory := false
	switch stage.StageType {
	case models.StageTypeGroup:
		generator = s.groupGen
	case models.StageTypeSingleElimination, models.StageTypeDoubleElimination:
		generator = s.elimGen
		needsCategory = true
	default:
		s.logger.Warn("unsupported stage type, skipping generation",
			slog.Int("stage_id", stage.ID),
			slog.String("stage_type", string(stage.StageType)))
		return nil
	}

	params := brackets.PlanParams{Stage: stage, Options: opts}

	// Only the elimination ladder needs the tournament's rating category; a
	// stage pointing at a missing tournament is a configuration error there.
	if needsCategory {
		tournament, err := s.tournamentRepo.GetByID(ctx, stage.TournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return fmt.Errorf("stage %d: %w", stage.ID, ErrTournamentNotFound)
			}
			return fmt.Errorf("failed to load tournament %d for stage %d: %w", stage.TournamentID, stage.ID, err)
		}
		params.CategoryID = tournament.CategoryID
	}

	rosters, err := s.loadRosters(ctx, stage.ID)
	if err != nil {
		return err
	}
	params.Rosters = rosters

	plan, err := generator.Plan(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to plan %s matchups for stage %d: %w", generator.Name(), stage.ID, err)
	}
	if len(plan.Rounds) == 0 {
		s.logger.Info("nothing to generate for stage",
			slog.Int("stage_id", stage.ID),
			slog.Int("roster_count", len(rosters)))
		return nil
	}

	if err := s.persistPlan(ctx, stage, plan); err != nil {
		if errors.Is(err, ErrMatchupsAlreadyGenerated) {
			s.logger.Info("lost generation race, another run already wrote this stage",
				slog.Int("stage_id", stage.ID))
			return nil
		}
		return err
	}

	s.logger.Info("matchups generated",
		slog.Int("stage_id", stage.ID),
		slog.String("generator", generator.Name()),
		slog.Int("rounds", len(plan.Rounds)),
		slog.Int("matchups", plan.MatchupCount()))
	return nil
}

func (s *MatchupService) loadRosters(ctx context.Context, stageID int) ([]*models.Roster, error) {
	rosters, err := s.rosterRepo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rosters for stage %d: %w", stageID, err)
	}

	rosterIDs := make([]int, len(rosters))
	for i, roster := range rosters {
		rosterIDs[i] = roster.ID
	}
	members, err := s.rosterRepo.ListMemberIDs(ctx, rosterIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster members for stage %d: %w", stageID, err)
	}
	for _, roster := range rosters {
		roster.MemberIDs = members[roster.ID]
	}
	return rosters, nil
}

// persistPlan writes rounds, matchups, roster links, score placeholders and
// parent links in one transaction, so a failure rolls the whole stage back.
// Rounds go first (matchups reference them), parent links last (they need the
// database ids of both sides).
func (s *MatchupService) persistPlan(ctx context.Context, stage *models.Stage, plan *brackets.StagePlan) error {
	return s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		roundIDs := make(map[int]int, len(plan.Rounds))
		for _, roundPlan := range plan.Rounds {
			round := &models.StageRound{StageID: stage.ID, RoundNumber: roundPlan.Number}
			if err := s.roundRepo.Create(ctx, exec, round); err != nil {
				if errors.Is(err, repositories.ErrStageRoundConflict) {
					return ErrMatchupsAlreadyGenerated
				}
				return err
			}
			roundIDs[roundPlan.Number] = round.ID
		}

		idsByUID := make(map[uuid.UUID]int, plan.MatchupCount())
		for _, roundPlan := range plan.Rounds {
			for _, planned := range roundPlan.Matchups {
				matchup := &models.Matchup{
					UID:          planned.UID,
					StageID:      stage.ID,
					StageRoundID: roundIDs[roundPlan.Number],
					MatchupType:  models.MatchupTypeOneVsOne,
					StartDate:    stage.StartDate,
					IsFinished:   planned.Finished,
				}
				if err := s.matchupRepo.Create(ctx, exec, matchup); err != nil {
					return err
				}
				idsByUID[planned.UID] = matchup.ID

				for _, rosterID := range planned.RosterIDs {
					link := &models.RosterToMatchup{RosterID: rosterID, MatchupID: matchup.ID}
					if planned.AutoWinRosterID != nil && *planned.AutoWinRosterID == rosterID {
						won := true
						link.IsWinner = &won
					}
					if err := s.matchupRepo.CreateRosterLink(ctx, exec, link); err != nil {
						return err
					}
				}

				if planned.HasScore {
					score := &models.Score{MatchupID: matchup.ID, RoundNumber: roundPlan.Number}
					if err := s.scoreRepo.Create(ctx, exec, score); err != nil {
						return err
					}
				}
			}
		}

		for _, roundPlan := range plan.Rounds {
			for _, planned := range roundPlan.Matchups {
				for _, parentUID := range planned.ParentUIDs {
					link := &models.MatchupToParentMatchup{
						MatchupID:       idsByUID[planned.UID],
						ParentMatchupID: idsByUID[parentUID],
					}
					if err := s.matchupRepo.CreateParentLink(ctx, exec, link); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

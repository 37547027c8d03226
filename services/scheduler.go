package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/openarena/matchup-engine/brackets"
	"github.com/openarena/matchup-engine/models"
	"github.com/openarena/matchup-engine/repositories"
)

// SchedulerConfig carries the poll intervals and the seeding policy of each
// job. Both were hard-coded historically; now they come from configuration.
type SchedulerConfig struct {
	AdvancementInterval time.Duration
	BootstrapInterval   time.Duration
	AdvancementOptions  brackets.Options
	BootstrapOptions    brackets.Options
}

// Scheduler owns the two recurring generation jobs:
//
//   - the advancement job moves tournaments forward: for every finished stage
//     it generates matchups for the next upcoming stage of the same
//     tournament;
//   - the bootstrap job generates matchups for upcoming entry stages (no
//     conversion rule, start date not yet passed).
//
// Both jobs are idempotent through the coordinator's generation guard, so
// overlapping ticks and manual invocations are safe. The scheduler is built,
// started and shut down explicitly by the application lifecycle; nothing runs
// at package load.
type Scheduler struct {
	scheduler gocron.Scheduler
	stageRepo repositories.StageRepository
	matchups  *MatchupService
	cfg       SchedulerConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewScheduler(
	stageRepo repositories.StageRepository,
	matchups *MatchupService,
	cfg SchedulerConfig,
	logger *slog.Logger,
) (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler: inner,
		stageRepo: stageRepo,
		matchups:  matchups,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}

	if _, err := inner.NewJob(
		gocron.DurationJob(cfg.AdvancementInterval),
		gocron.NewTask(func() {
			if err := s.RunAdvancement(context.Background()); err != nil {
				s.logger.Error("advancement sweep failed", slog.Any("error", err))
			}
		}),
	); err != nil {
		return nil, fmt.Errorf("failed to register advancement job: %w", err)
	}

	if _, err := inner.NewJob(
		gocron.DurationJob(cfg.BootstrapInterval),
		gocron.NewTask(func() {
			if err := s.RunBootstrap(context.Background()); err != nil {
				s.logger.Error("bootstrap sweep failed", slog.Any("error", err))
			}
		}),
	); err != nil {
		return nil, fmt.Errorf("failed to register bootstrap job: %w", err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("matchup scheduler started",
		slog.Duration("advancement_interval", s.cfg.AdvancementInterval),
		slog.Duration("bootstrap_interval", s.cfg.BootstrapInterval))
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

// RunAdvancement performs one advancement sweep. A failure on one stage is
// logged and does not stop the sweep; only the listing query is fatal.
func (s *Scheduler) RunAdvancement(ctx context.Context) error {
	finished, err := s.stageRepo.ListByStatus(ctx, models.StageStatusFinished)
	if err != nil {
		return fmt.Errorf("failed to list finished stages: %w", err)
	}

	for _, stage := range finished {
		next, err := s.stageRepo.FindNextUpcomingInTournament(ctx, stage.TournamentID, stage.StartDate)
		if err != nil {
			if errors.Is(err, repositories.ErrStageNotFound) {
				continue
			}
			s.logger.Error("failed to find next stage",
				slog.Int("tournament_id", stage.TournamentID),
				slog.Int("finished_stage_id", stage.ID),
				slog.Any("error", err))
			continue
		}

		if err := s.matchups.GenerateMatchupsForStage(ctx, next, s.cfg.AdvancementOptions); err != nil {
			s.logger.Error("advancement generation failed",
				slog.Int("stage_id", next.ID),
				slog.Any("error", err))
		}
	}
	return nil
}

// RunBootstrap performs one bootstrap sweep over upcoming entry stages.
func (s *Scheduler) RunBootstrap(ctx context.Context) error {
	stages, err := s.stageRepo.ListUpcomingEntryStages(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to list upcoming entry stages: %w", err)
	}

	for _, stage := range stages {
		if err := s.matchups.GenerateMatchupsForStage(ctx, stage, s.cfg.BootstrapOptions); err != nil {
			s.logger.Error("bootstrap generation failed",
				slog.Int("stage_id", stage.ID),
				slog.Any("error", err))
		}
	}
	return nil
}

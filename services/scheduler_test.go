package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/openarena/matchup-engine/brackets"
	"github.com/openarena/matchup-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSchedulerFixture(t *testing.T, cfg SchedulerConfig) (*fixture, *Scheduler) {
	t.Helper()

	if cfg.AdvancementInterval == 0 {
		cfg.AdvancementInterval = time.Minute
	}
	if cfg.BootstrapInterval == 0 {
		cfg.BootstrapInterval = time.Minute
	}

	f := newFixture(t)
	scheduler, err := NewScheduler(f.stages, f.service, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = scheduler.Shutdown() })
	return f, scheduler
}

func TestRunAdvancementGeneratesNextStage(t *testing.T) {
	f, scheduler := newSchedulerFixture(t, SchedulerConfig{})

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	finished := groupStage(10, 1)
	finished.StageStatus = models.StageStatusFinished
	finished.StartDate = base
	f.addStage(finished)

	next := eliminationStage(11, 1)
	next.StartDate = base.Add(24 * time.Hour)
	f.addStage(next)
	f.addTournament(1, 9)
	f.addRosters(next.ID, 4)

	require.NoError(t, scheduler.RunAdvancement(context.Background()))

	require.Len(t, f.rounds.rounds, 2)
	for _, round := range f.rounds.rounds {
		assert.Equal(t, next.ID, round.StageID)
	}
	assert.Len(t, f.matchups.matchups, 3)
}

func TestRunAdvancementSkipsTournamentsWithoutNextStage(t *testing.T) {
	f, scheduler := newSchedulerFixture(t, SchedulerConfig{})

	finished := groupStage(10, 1)
	finished.StageStatus = models.StageStatusFinished
	f.addStage(finished)

	require.NoError(t, scheduler.RunAdvancement(context.Background()))
	assert.Empty(t, f.matchups.matchups)
}

func TestRunAdvancementIsolatesFailures(t *testing.T) {
	f, scheduler := newSchedulerFixture(t, SchedulerConfig{})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Tournament 1 has a broken next stage: an elimination ladder whose
	// tournament record is missing, so generation errors out.
	brokenFinished := groupStage(10, 1)
	brokenFinished.StageStatus = models.StageStatusFinished
	brokenFinished.StartDate = base
	f.addStage(brokenFinished)
	brokenNext := eliminationStage(11, 1)
	brokenNext.StartDate = base.Add(time.Hour)
	f.addStage(brokenNext)
	f.addRosters(brokenNext.ID, 4)

	// Tournament 2 is healthy and must still be processed.
	healthyFinished := groupStage(20, 2)
	healthyFinished.StageStatus = models.StageStatusFinished
	healthyFinished.StartDate = base
	f.addStage(healthyFinished)
	healthyNext := groupStage(21, 2)
	healthyNext.StartDate = base.Add(time.Hour)
	f.addStage(healthyNext)
	f.addRosters(healthyNext.ID, 4)

	require.NoError(t, scheduler.RunAdvancement(context.Background()))

	for _, matchup := range f.matchups.matchups {
		assert.Equal(t, healthyNext.ID, matchup.StageID)
	}
	assert.Len(t, f.matchups.matchups, 6)
}

func TestRunAdvancementUsesConfiguredOptions(t *testing.T) {
	f, scheduler := newSchedulerFixture(t, SchedulerConfig{
		AdvancementOptions: brackets.Options{Seeded: true},
	})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	finished := groupStage(10, 1)
	finished.StageStatus = models.StageStatusFinished
	finished.StartDate = base
	f.addStage(finished)

	next := eliminationStage(11, 1)
	next.StartDate = base.Add(time.Hour)
	f.addStage(next)
	f.addTournament(1, 9)
	f.addRoster(next.ID, 1, 101)
	f.addRoster(next.ID, 2, 102)
	f.careers.eloByUser = map[int]int{101: 900, 102: 1600}

	require.NoError(t, scheduler.RunAdvancement(context.Background()))

	require.Len(t, f.matchups.rosterLinks, 2)
	assert.Equal(t, 2, f.matchups.rosterLinks[0].RosterID, "seeding must order by rating")
}

func TestRunBootstrapGeneratesOnlyEntryStages(t *testing.T) {
	f, scheduler := newSchedulerFixture(t, SchedulerConfig{})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scheduler.now = func() time.Time { return now }

	entry := groupStage(1, 1)
	entry.StartDate = now.Add(time.Hour)
	f.addStage(entry)
	f.addRosters(entry.ID, 4)

	ruleID := 5
	converted := groupStage(2, 1)
	converted.StartDate = now.Add(time.Hour)
	converted.ConversionRuleID = &ruleID
	f.addStage(converted)
	f.addRosters(converted.ID, 4)

	alreadyStarted := groupStage(3, 1)
	alreadyStarted.StartDate = now.Add(-time.Hour)
	f.addStage(alreadyStarted)
	f.addRosters(alreadyStarted.ID, 4)

	done := groupStage(4, 1)
	done.StageStatus = models.StageStatusFinished
	done.StartDate = now.Add(time.Hour)
	f.addStage(done)
	f.addRosters(done.ID, 4)

	require.NoError(t, scheduler.RunBootstrap(context.Background()))

	assert.Len(t, f.matchups.matchups, 6)
	for _, matchup := range f.matchups.matchups {
		assert.Equal(t, entry.ID, matchup.StageID)
	}
}

func TestRunBootstrapIsolatesFailures(t *testing.T) {
	f, scheduler := newSchedulerFixture(t, SchedulerConfig{})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scheduler.now = func() time.Time { return now }

	broken := eliminationStage(1, 42) // tournament 42 does not exist
	broken.StartDate = now.Add(time.Hour)
	f.addStage(broken)
	f.addRosters(broken.ID, 4)

	healthy := groupStage(2, 1)
	healthy.StartDate = now.Add(time.Hour)
	f.addStage(healthy)
	f.addRosters(healthy.ID, 4)

	require.NoError(t, scheduler.RunBootstrap(context.Background()))

	assert.Len(t, f.matchups.matchups, 6)
	for _, matchup := range f.matchups.matchups {
		assert.Equal(t, healthy.ID, matchup.StageID)
	}
}

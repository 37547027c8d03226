package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/openarena/matchup-engine/brackets"
	"github.com/openarena/matchup-engine/models"
	"github.com/openarena/matchup-engine/repositories"
)

// In-memory stand-ins for the postgres repositories. They mirror the real
// queries closely enough for coordinator and scheduler tests: registration
// order on rosters, the round-number uniqueness conflict, joins through the
// matchup table for stage-scoped listings.

type fakeTxRunner struct {
	beginErr error
	calls    int
}

func (f *fakeTxRunner) RunInTx(_ context.Context, fn func(repositories.SQLExecutor) error) error {
	f.calls++
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	tournament, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return tournament, nil
}

type fakeStageRepo struct {
	stages []*models.Stage
}

func (f *fakeStageRepo) GetByID(_ context.Context, id int) (*models.Stage, error) {
	for _, stage := range f.stages {
		if stage.ID == id {
			return stage, nil
		}
	}
	return nil, repositories.ErrStageNotFound
}

func (f *fakeStageRepo) ListByStatus(_ context.Context, status models.StageStatus) ([]*models.Stage, error) {
	var out []*models.Stage
	for _, stage := range f.stages {
		if stage.StageStatus == status {
			out = append(out, stage)
		}
	}
	return out, nil
}

func (f *fakeStageRepo) ListUpcomingEntryStages(_ context.Context, from time.Time) ([]*models.Stage, error) {
	var out []*models.Stage
	for _, stage := range f.stages {
		if stage.StageStatus == models.StageStatusUpcoming &&
			!stage.StartDate.Before(from) &&
			stage.ConversionRuleID == nil {
			out = append(out, stage)
		}
	}
	return out, nil
}

func (f *fakeStageRepo) FindNextUpcomingInTournament(_ context.Context, tournamentID int, after time.Time) (*models.Stage, error) {
	var next *models.Stage
	for _, stage := range f.stages {
		if stage.TournamentID != tournamentID ||
			stage.StageStatus != models.StageStatusUpcoming ||
			stage.StartDate.Before(after) {
			continue
		}
		if next == nil || stage.StartDate.Before(next.StartDate) {
			next = stage
		}
	}
	if next == nil {
		return nil, repositories.ErrStageNotFound
	}
	return next, nil
}

type fakeRosterRepo struct {
	rostersByStage  map[int][]*models.Roster
	membersByRoster map[int][]int
}

func (f *fakeRosterRepo) ListByStage(_ context.Context, stageID int) ([]*models.Roster, error) {
	rosters := f.rostersByStage[stageID]
	out := make([]*models.Roster, len(rosters))
	for i, roster := range rosters {
		copied := *roster
		out[i] = &copied
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRosterRepo) ListMemberIDs(_ context.Context, rosterIDs []int) (map[int][]int, error) {
	members := make(map[int][]int, len(rosterIDs))
	for _, rosterID := range rosterIDs {
		if ids, ok := f.membersByRoster[rosterID]; ok {
			members[rosterID] = ids
		}
	}
	return members, nil
}

type fakeRoundRepo struct {
	rounds []*models.StageRound
	nextID int
}

func (f *fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.StageRound) error {
	for _, existing := range f.rounds {
		if existing.StageID == round.StageID && existing.RoundNumber == round.RoundNumber {
			return repositories.ErrStageRoundConflict
		}
	}
	f.nextID++
	round.ID = f.nextID
	round.CreatedAt = time.Now()
	copied := *round
	f.rounds = append(f.rounds, &copied)
	return nil
}

func (f *fakeRoundRepo) ListByStage(_ context.Context, stageID int) ([]*models.StageRound, error) {
	var out []*models.StageRound
	for _, round := range f.rounds {
		if round.StageID == stageID {
			out = append(out, round)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

type fakeMatchupRepo struct {
	matchups    []*models.Matchup
	rosterLinks []*models.RosterToMatchup
	parentLinks []*models.MatchupToParentMatchup
	nextID      int
	existsErr   error
}

func (f *fakeMatchupRepo) Create(_ context.Context, _ repositories.SQLExecutor, matchup *models.Matchup) error {
	f.nextID++
	matchup.ID = f.nextID
	matchup.CreatedAt = time.Now()
	copied := *matchup
	f.matchups = append(f.matchups, &copied)
	return nil
}

func (f *fakeMatchupRepo) ExistsByStage(_ context.Context, stageID int) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, matchup := range f.matchups {
		if matchup.StageID == stageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMatchupRepo) ListByStage(_ context.Context, stageID int) ([]*models.Matchup, error) {
	var out []*models.Matchup
	for _, matchup := range f.matchups {
		if matchup.StageID == stageID {
			out = append(out, matchup)
		}
	}
	return out, nil
}

func (f *fakeMatchupRepo) CreateRosterLink(_ context.Context, _ repositories.SQLExecutor, link *models.RosterToMatchup) error {
	link.ID = len(f.rosterLinks) + 1
	copied := *link
	f.rosterLinks = append(f.rosterLinks, &copied)
	return nil
}

func (f *fakeMatchupRepo) CreateParentLink(_ context.Context, _ repositories.SQLExecutor, link *models.MatchupToParentMatchup) error {
	link.ID = len(f.parentLinks) + 1
	copied := *link
	f.parentLinks = append(f.parentLinks, &copied)
	return nil
}

func (f *fakeMatchupRepo) ListRosterLinksByStage(_ context.Context, stageID int) ([]*models.RosterToMatchup, error) {
	var out []*models.RosterToMatchup
	for _, link := range f.rosterLinks {
		if f.stageOf(link.MatchupID) == stageID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (f *fakeMatchupRepo) ListParentLinksByStage(_ context.Context, stageID int) ([]*models.MatchupToParentMatchup, error) {
	var out []*models.MatchupToParentMatchup
	for _, link := range f.parentLinks {
		if f.stageOf(link.MatchupID) == stageID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (f *fakeMatchupRepo) stageOf(matchupID int) int {
	for _, matchup := range f.matchups {
		if matchup.ID == matchupID {
			return matchup.StageID
		}
	}
	return 0
}

type fakeScoreRepo struct {
	matchupRepo *fakeMatchupRepo
	scores      []*models.Score
}

func (f *fakeScoreRepo) Create(_ context.Context, _ repositories.SQLExecutor, score *models.Score) error {
	score.ID = len(f.scores) + 1
	copied := *score
	f.scores = append(f.scores, &copied)
	return nil
}

func (f *fakeScoreRepo) ListByStage(_ context.Context, stageID int) ([]*models.Score, error) {
	var out []*models.Score
	for _, score := range f.scores {
		if f.matchupRepo.stageOf(score.MatchupID) == stageID {
			out = append(out, score)
		}
	}
	return out, nil
}

type fakeCareerRepo struct {
	eloByUser map[int]int
}

func (f *fakeCareerRepo) GetEloByUserIDs(_ context.Context, userIDs []int, _ int) (map[int]int, error) {
	stored := make(map[int]int)
	for _, userID := range userIDs {
		if elo, ok := f.eloByUser[userID]; ok {
			stored[userID] = elo
		}
	}
	return stored, nil
}

// fixture wires a MatchupService over the fakes with deterministic shuffles.
type fixture struct {
	tx          *fakeTxRunner
	tournaments *fakeTournamentRepo
	stages      *fakeStageRepo
	rosters     *fakeRosterRepo
	rounds      *fakeRoundRepo
	matchups    *fakeMatchupRepo
	scores      *fakeScoreRepo
	careers     *fakeCareerRepo
	service     *MatchupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		tx:          &fakeTxRunner{},
		tournaments: &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)},
		stages:      &fakeStageRepo{},
		rosters: &fakeRosterRepo{
			rostersByStage:  make(map[int][]*models.Roster),
			membersByRoster: make(map[int][]int),
		},
		rounds:   &fakeRoundRepo{},
		matchups: &fakeMatchupRepo{},
		careers:  &fakeCareerRepo{eloByUser: make(map[int]int)},
	}
	f.scores = &fakeScoreRepo{matchupRepo: f.matchups}

	seeder := brackets.NewSeeder(NewRankingService(f.careers), rand.New(rand.NewSource(1)))
	f.service = NewMatchupService(
		f.tx,
		f.tournaments,
		f.rosters,
		f.rounds,
		f.matchups,
		f.scores,
		brackets.NewGroupStageGenerator(seeder, 4),
		brackets.NewEliminationGenerator(seeder),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func (f *fixture) addTournament(id, categoryID int) {
	f.tournaments.tournaments[id] = &models.Tournament{ID: id, Name: "test", CategoryID: categoryID}
}

func (f *fixture) addStage(stage *models.Stage) *models.Stage {
	f.stages.stages = append(f.stages.stages, stage)
	return stage
}

func (f *fixture) addRoster(stageID, rosterID int, memberIDs ...int) {
	f.rosters.rostersByStage[stageID] = append(f.rosters.rostersByStage[stageID], &models.Roster{
		ID:      rosterID,
		StageID: stageID,
	})
	if len(memberIDs) > 0 {
		f.rosters.membersByRoster[rosterID] = memberIDs
	}
}

func (f *fixture) addRosters(stageID, count int) {
	for i := 1; i <= count; i++ {
		f.addRoster(stageID, i)
	}
}

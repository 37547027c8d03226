package brackets

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/openarena/matchup-engine/models"
)

// EliminationGenerator builds the single round ladder used for both
// single_elimination and double_elimination stages. A separate losers bracket
// is not modeled; double elimination rides the same ladder.
//
// Round 1 of a bracket with n rosters carries 2^ceil(log2(n)) - n bye
// placeholder matchups: finished on creation, no roster links, no score rows.
// The byed rosters advance in memory only, carrying their bye matchup as the
// slot source. Every later round pairs the advancing slots two at a time; an
// odd leftover slot turns into an automatic advancement (finished matchup,
// single roster link with is_winner set).
type EliminationGenerator struct {
	seeder *Seeder
}

func NewEliminationGenerator(seeder *Seeder) *EliminationGenerator {
	return &EliminationGenerator{seeder: seeder}
}

func (g *EliminationGenerator) Name() string {
	return "Elimination"
}

func (g *EliminationGenerator) Plan(ctx context.Context, params PlanParams) (*StagePlan, error) {
	stageType := params.Stage.StageType
	if stageType != models.StageTypeSingleElimination && stageType != models.StageTypeDoubleElimination {
		return nil, fmt.Errorf("elimination generator cannot handle stage type %q", stageType)
	}

	policy := PolicyNone
	switch {
	case params.Options.Shuffle:
		policy = PolicyShuffle
	case params.Options.Seeded:
		policy = PolicySeeded
	}

	ordered, err := g.seeder.Order(ctx, params.Rosters, policy, params.CategoryID)
	if err != nil {
		return nil, err
	}

	n := len(ordered)
	if n <= 1 {
		// Nothing to ladder; also keeps ceil(log2) out of degenerate inputs.
		return &StagePlan{}, nil
	}

	totalRounds := ceilLog2(n)
	byes := (1 << totalRounds) - n

	rostersByID := make(map[int]*models.Roster, n)
	slots := make([]slot, n)
	for i, roster := range ordered {
		rostersByID[roster.ID] = roster
		id := roster.ID
		slots[i] = slot{rosterID: &id}
	}

	plan := &StagePlan{Rounds: make([]RoundPlan, 0, totalRounds)}

	for round := 1; round <= totalRounds; round++ {
		roundPlan := RoundPlan{Number: round}
		next := make([]slot, 0, (len(slots)+1)/2)

		pairable := slots
		if round == 1 && byes > 0 {
			// Byes are materialized only in the first round and go to the
			// tail of the seeding order. n - byes is always even, so the
			// remaining head pairs up cleanly.
			cut := len(slots) - byes
			pairable = slots[:cut]
			for _, byed := range slots[cut:] {
				placeholder := PlannedMatchup{
					UID:      uuid.New(),
					Finished: true,
					Bye:      true,
				}
				roundPlan.Matchups = append(roundPlan.Matchups, placeholder)
				uid := placeholder.UID
				next = append(next, slot{rosterID: byed.rosterID, sourceUID: &uid, fromBye: true})
			}
		}

		for i := 0; i+1 < len(pairable); i += 2 {
			first, second := pairable[i], pairable[i+1]
			matchup := PlannedMatchup{
				UID:        uuid.New(),
				HasScore:   true,
				ParentUIDs: parentUIDs(first, second),
			}
			if first.rosterID != nil {
				matchup.RosterIDs = append(matchup.RosterIDs, *first.rosterID)
			}
			if second.rosterID != nil {
				matchup.RosterIDs = append(matchup.RosterIDs, *second.rosterID)
			}
			roundPlan.Matchups = append(roundPlan.Matchups, matchup)
			uid := matchup.UID
			next = append(next, slot{sourceUID: &uid})
		}

		if len(pairable)%2 == 1 {
			// Odd leftover slot: automatic advancement. Unreachable in round 1
			// (see the bye arithmetic above), kept as the guard for irregular
			// later rounds.
			lone := pairable[len(pairable)-1]
			advancement := PlannedMatchup{
				UID:        uuid.New(),
				Finished:   true,
				HasScore:   true,
				ParentUIDs: parentUIDs(lone),
			}
			if lone.rosterID != nil {
				advancement.RosterIDs = []int{*lone.rosterID}
				advancement.AutoWinRosterID = lone.rosterID
			}
			roundPlan.Matchups = append(roundPlan.Matchups, advancement)
			uid := advancement.UID
			next = append(next, slot{rosterID: lone.rosterID, sourceUID: &uid})
		}

		plan.Rounds = append(plan.Rounds, roundPlan)

		if round == 1 && policy == PolicySeeded && byes > 0 {
			next, err = g.reseedAfterByes(ctx, next, roundPlan, rostersByID, params.CategoryID)
			if err != nil {
				return nil, err
			}
		}

		slots = next
	}

	return plan, nil
}

// parentUIDs collects the source matchups of the consumed slots. Bye
// placeholders never count as parents, so a matchup fed by one real slot and
// one bye slot records a single parent.
func parentUIDs(consumed ...slot) []uuid.UUID {
	var parents []uuid.UUID
	for _, s := range consumed {
		if s.sourceUID != nil && !s.fromBye {
			parents = append(parents, *s.sourceUID)
		}
	}
	return parents
}

// reseedAfterByes reorders the slots advancing out of round 1: bye-derived
// slots sort to the bottom (negative infinity), every other slot by the
// average rating across all members of the rosters feeding its source
// matchup. Stable, descending. Later rounds are never re-seeded.
func (g *EliminationGenerator) reseedAfterByes(ctx context.Context, slots []slot, round RoundPlan, rostersByID map[int]*models.Roster, categoryID int) ([]slot, error) {
	matchupsByUID := make(map[uuid.UUID]PlannedMatchup, len(round.Matchups))
	for _, matchup := range round.Matchups {
		matchupsByUID[matchup.UID] = matchup
	}

	memberSets := make([][]int, len(slots))
	allMembers := make([]int, 0)
	seen := make(map[int]struct{})
	for i, s := range slots {
		if s.fromBye {
			continue
		}
		var rosterIDs []int
		switch {
		case s.sourceUID != nil:
			rosterIDs = matchupsByUID[*s.sourceUID].RosterIDs
		case s.rosterID != nil:
			rosterIDs = []int{*s.rosterID}
		}
		for _, rosterID := range rosterIDs {
			roster, ok := rostersByID[rosterID]
			if !ok {
				continue
			}
			memberSets[i] = append(memberSets[i], roster.MemberIDs...)
			for _, userID := range roster.MemberIDs {
				if _, dup := seen[userID]; dup {
					continue
				}
				seen[userID] = struct{}{}
				allMembers = append(allMembers, userID)
			}
		}
	}

	ratings, err := g.seeder.ratings.Ratings(ctx, allMembers, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ratings for re-seeding: %w", err)
	}

	keys := make([]float64, len(slots))
	for i, s := range slots {
		if s.fromBye {
			keys[i] = math.Inf(-1)
			continue
		}
		keys[i] = averageRating(memberSets[i], ratings)
	}

	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return keys[order[i]] > keys[order[j]]
	})

	reordered := make([]slot, len(slots))
	for i, idx := range order {
		reordered[i] = slots[idx]
	}
	return reordered, nil
}

func ceilLog2(n int) int {
	rounds := 0
	for (1 << rounds) < n {
		rounds++
	}
	return rounds
}

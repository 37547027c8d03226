package brackets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/openarena/matchup-engine/models"
)

const DefaultGroupSize = 4

// GroupStageGenerator partitions rosters into consecutive fixed-size groups
// and produces a single round-robin pass within each group. All matchups
// share round 1.
type GroupStageGenerator struct {
	seeder    *Seeder
	groupSize int
}

func NewGroupStageGenerator(seeder *Seeder, groupSize int) *GroupStageGenerator {
	if groupSize < 2 {
		groupSize = DefaultGroupSize
	}
	return &GroupStageGenerator{seeder: seeder, groupSize: groupSize}
}

func (g *GroupStageGenerator) Name() string {
	return "GroupStage"
}

func (g *GroupStageGenerator) Plan(ctx context.Context, params PlanParams) (*StagePlan, error) {
	if params.Stage.StageType != models.StageTypeGroup {
		return nil, fmt.Errorf("group generator cannot handle stage type %q", params.Stage.StageType)
	}
	if len(params.Rosters) == 0 {
		return &StagePlan{}, nil
	}

	// Group stages never rating-seed, only shuffle or keep registration order.
	policy := PolicyNone
	if params.Options.Shuffle {
		policy = PolicyShuffle
	}
	ordered, err := g.seeder.Order(ctx, params.Rosters, policy, params.CategoryID)
	if err != nil {
		return nil, err
	}

	round := RoundPlan{Number: 1}
	for start := 0; start < len(ordered); start += g.groupSize {
		end := start + g.groupSize
		if end > len(ordered) {
			end = len(ordered)
		}
		group := ordered[start:end]

		// Every unordered pair within the group; a group of one plays nobody.
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				round.Matchups = append(round.Matchups, PlannedMatchup{
					UID:       uuid.New(),
					RosterIDs: []int{group[i].ID, group[j].ID},
					HasScore:  true,
				})
			}
		}
	}

	return &StagePlan{Rounds: []RoundPlan{round}}, nil
}

package brackets

import (
	"context"

	"github.com/openarena/matchup-engine/models"
)

// Options are the seeding switches for one generation run. For elimination
// stages Shuffle takes precedence over Seeded; group stages ignore Seeded.
type Options struct {
	Shuffle bool
	Seeded  bool
}

type PlanParams struct {
	Stage      *models.Stage
	CategoryID int
	// Rosters in registration order, with MemberIDs populated.
	Rosters []*models.Roster
	Options Options
}

// Generator produces the in-memory matchup plan for a stage. Generators never
// touch storage; persistence is the coordinator's job.
type Generator interface {
	Plan(ctx context.Context, params PlanParams) (*StagePlan, error)

	Name() string
}

package brackets

import "github.com/google/uuid"

// StagePlan is the complete write-once output of one generation run:
// every round and every matchup of a stage, with linkage expressed through
// plan-level UIDs. Database ids are assigned during persistence.
type StagePlan struct {
	Rounds []RoundPlan
}

type RoundPlan struct {
	Number   int
	Matchups []PlannedMatchup
}

// PlannedMatchup is one bracket slot.
//
// Bye placeholders carry no rosters, no score and no parents; automatic
// advancements carry exactly one roster with AutoWinRosterID set. Everything
// else is a real pairing.
type PlannedMatchup struct {
	UID             uuid.UUID
	RosterIDs       []int
	AutoWinRosterID *int
	Finished        bool
	Bye             bool
	HasScore        bool
	ParentUIDs      []uuid.UUID
}

func (p *StagePlan) MatchupCount() int {
	count := 0
	for _, round := range p.Rounds {
		count += len(round.Matchups)
	}
	return count
}

// slot is one advancing position between rounds: either a roster known to
// play in the next round, a pending winner of a prior matchup, or both (an
// automatic advancement keeps its roster and its source matchup).
type slot struct {
	rosterID  *int
	sourceUID *uuid.UUID
	fromBye   bool
}

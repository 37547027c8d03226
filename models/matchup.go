package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchupType string

const (
	MatchupTypeOneVsOne MatchupType = "one_vs_one"
)

// StageRound нумеруется с единицы и уникален в пределах этапа.
type StageRound struct {
	ID          int       `json:"id" db:"id"`
	StageID     int       `json:"stage_id" db:"stage_id"`
	RoundNumber int       `json:"round_number" db:"round_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Matchup is a single bracket slot. IsFinished is true at creation only for
// bye placeholders and automatic advancements; real pairings start false.
type Matchup struct {
	ID           int         `json:"id" db:"id"`
	UID          uuid.UUID   `json:"uid" db:"uid"`
	StageID      int         `json:"stage_id" db:"stage_id"`
	StageRoundID int         `json:"stage_round_id" db:"stage_round_id"`
	MatchupType  MatchupType `json:"matchup_type" db:"matchup_type"`
	StartDate    time.Time   `json:"start_date" db:"start_date"`
	IsFinished   bool        `json:"is_finished" db:"is_finished"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// RosterToMatchup links a roster into a matchup. IsWinner is set at creation
// only for automatic bye-advancement; result entry fills it in later.
type RosterToMatchup struct {
	ID        int       `json:"id" db:"id"`
	RosterID  int       `json:"roster_id" db:"roster_id"`
	MatchupID int       `json:"matchup_id" db:"matchup_id"`
	IsWinner  *bool     `json:"is_winner,omitempty" db:"is_winner"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Score — заготовка счёта на пару (matchup, round_number); заполняется
// внешним вводом результатов.
type Score struct {
	ID          int       `json:"id" db:"id"`
	MatchupID   int       `json:"matchup_id" db:"matchup_id"`
	RoundNumber int       `json:"round_number" db:"round_number"`
	Value       *string   `json:"value,omitempty" db:"value"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// MatchupToParentMatchup records bracket ancestry for display: which prior
// round matchups feed this one. Generation never reads it back.
type MatchupToParentMatchup struct {
	ID              int `json:"id" db:"id"`
	MatchupID       int `json:"matchup_id" db:"matchup_id"`
	ParentMatchupID int `json:"parent_matchup_id" db:"parent_matchup_id"`
}

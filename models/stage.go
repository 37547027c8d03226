package models

import "time"

// StageType соответствует ENUM stage_type в БД.
type StageType string

const (
	StageTypeGroup             StageType = "group"
	StageTypeSingleElimination StageType = "single_elimination"
	StageTypeDoubleElimination StageType = "double_elimination"
)

// StageStatus соответствует ENUM stage_status в БД.
type StageStatus string

const (
	StageStatusUpcoming  StageStatus = "upcoming"
	StageStatusOngoing   StageStatus = "ongoing"
	StageStatusFinished  StageStatus = "finished"
	StageStatusCancelled StageStatus = "cancelled"
)

// Stage is one phase of a tournament. A nil ConversionRuleID marks an entry
// stage: its matchups can be generated without waiting on a prior stage.
type Stage struct {
	ID               int         `json:"id" db:"id"`
	TournamentID     int         `json:"tournament_id" db:"tournament_id"`
	Name             string      `json:"name" db:"name"`
	StageType        StageType   `json:"stage_type" db:"stage_type"`
	StageStatus      StageStatus `json:"stage_status" db:"stage_status"`
	StartDate        time.Time   `json:"start_date" db:"start_date"`
	EndDate          time.Time   `json:"end_date" db:"end_date"`
	ConversionRuleID *int        `json:"conversion_rule_id,omitempty" db:"conversion_rule_id"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

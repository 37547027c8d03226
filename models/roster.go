package models

import "time"

// Roster — заявленный на этап состав (команда или одиночный участник).
type Roster struct {
	ID        int       `json:"id" db:"id"`
	StageID   int       `json:"stage_id" db:"stage_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// MemberIDs загружается отдельно через user_to_rosters.
	MemberIDs []int `json:"member_ids,omitempty" db:"-"`
}

type UserToRoster struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	RosterID  int       `json:"roster_id" db:"roster_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

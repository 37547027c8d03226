package models

import "time"

// Tournament is the owning record for a sequence of stages. The engine only
// reads it: the category is the seeding-rating namespace for every stage.
type Tournament struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CategoryID int       `json:"category_id" db:"category_id"`
	StartDate  time.Time `json:"start_date" db:"start_date"`
	EndDate    time.Time `json:"end_date" db:"end_date"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

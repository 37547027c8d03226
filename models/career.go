package models

import "time"

// DefaultElo is assumed for any user without a career record in a category.
const DefaultElo = 1000

// CategoryCareer — рейтинг пользователя в рамках категории.
type CategoryCareer struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	CategoryID int       `json:"category_id" db:"category_id"`
	Elo        int       `json:"elo" db:"elo"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

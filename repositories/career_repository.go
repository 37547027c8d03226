package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type CareerRepository interface {
	// GetEloByUserIDs returns elo per user for one category. Users without a
	// career record are simply absent from the result.
	GetEloByUserIDs(ctx context.Context, userIDs []int, categoryID int) (map[int]int, error)
}

type postgresCareerRepository struct {
	db *sql.DB
}

func NewPostgresCareerRepository(db *sql.DB) CareerRepository {
	return &postgresCareerRepository{db: db}
}

func (r *postgresCareerRepository) GetEloByUserIDs(ctx context.Context, userIDs []int, categoryID int) (map[int]int, error) {
	ratings := make(map[int]int, len(userIDs))
	if len(userIDs) == 0 {
		return ratings, nil
	}

	query := `SELECT user_id, elo FROM category_careers
		WHERE category_id = $1 AND user_id = ANY($2)`

	rows, err := r.db.QueryContext(ctx, query, categoryID, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query careers for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, elo int
		if err := rows.Scan(&userID, &elo); err != nil {
			return nil, fmt.Errorf("failed to scan career row: %w", err)
		}
		ratings[userID] = elo
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate career rows: %w", err)
	}
	return ratings, nil
}

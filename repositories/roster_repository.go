package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/openarena/matchup-engine/models"
)

type RosterRepository interface {
	// ListByStage returns rosters in registration order (creation order).
	ListByStage(ctx context.Context, stageID int) ([]*models.Roster, error)
	// ListMemberIDs returns user ids per roster via user_to_rosters.
	ListMemberIDs(ctx context.Context, rosterIDs []int) (map[int][]int, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) ListByStage(ctx context.Context, stageID int) ([]*models.Roster, error) {
	query := `SELECT id, stage_id, name, created_at FROM rosters
		WHERE stage_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rosters for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	rosters := make([]*models.Roster, 0)
	for rows.Next() {
		roster := &models.Roster{}
		if err := rows.Scan(&roster.ID, &roster.StageID, &roster.Name, &roster.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		rosters = append(rosters, roster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster rows: %w", err)
	}
	return rosters, nil
}

func (r *postgresRosterRepository) ListMemberIDs(ctx context.Context, rosterIDs []int) (map[int][]int, error) {
	members := make(map[int][]int, len(rosterIDs))
	if len(rosterIDs) == 0 {
		return members, nil
	}

	query := `SELECT roster_id, user_id FROM user_to_rosters
		WHERE roster_id = ANY($1)
		ORDER BY roster_id ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(rosterIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query roster members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rosterID, userID int
		if err := rows.Scan(&rosterID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan roster member row: %w", err)
		}
		members[rosterID] = append(members[rosterID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster member rows: %w", err)
	}
	return members, nil
}

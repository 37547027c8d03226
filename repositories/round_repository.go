package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/openarena/matchup-engine/models"
)

// ErrStageRoundConflict surfaces the unique constraint on
// (stage_id, round_number). A conflict during generation means another run
// already generated this stage.
var ErrStageRoundConflict = errors.New("stage round already exists for this stage")

type StageRoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.StageRound) error
	ListByStage(ctx context.Context, stageID int) ([]*models.StageRound, error)
}

type postgresStageRoundRepository struct {
	db *sql.DB
}

func NewPostgresStageRoundRepository(db *sql.DB) StageRoundRepository {
	return &postgresStageRoundRepository{db: db}
}

func (r *postgresStageRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.StageRound) error {
	query := `INSERT INTO stage_rounds (stage_id, round_number)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, round.StageID, round.RoundNumber).
		Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "uq_stage_rounds_stage_round" {
			return ErrStageRoundConflict
		}
		return fmt.Errorf("failed to create round %d for stage %d: %w", round.RoundNumber, round.StageID, err)
	}
	return nil
}

func (r *postgresStageRoundRepository) ListByStage(ctx context.Context, stageID int) ([]*models.StageRound, error) {
	query := `SELECT id, stage_id, round_number, created_at FROM stage_rounds
		WHERE stage_id = $1
		ORDER BY round_number ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	rounds := make([]*models.StageRound, 0)
	for rows.Next() {
		round := &models.StageRound{}
		if err := rows.Scan(&round.ID, &round.StageID, &round.RoundNumber, &round.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate round rows: %w", err)
	}
	return rounds, nil
}

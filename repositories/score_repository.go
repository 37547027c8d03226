package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openarena/matchup-engine/models"
)

type ScoreRepository interface {
	Create(ctx context.Context, exec SQLExecutor, score *models.Score) error
	ListByStage(ctx context.Context, stageID int) ([]*models.Score, error)
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) Create(ctx context.Context, exec SQLExecutor, score *models.Score) error {
	query := `INSERT INTO scores (matchup_id, round_number, value)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, score.MatchupID, score.RoundNumber, score.Value).
		Scan(&score.ID, &score.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create score for matchup %d round %d: %w", score.MatchupID, score.RoundNumber, err)
	}
	return nil
}

func (r *postgresScoreRepository) ListByStage(ctx context.Context, stageID int) ([]*models.Score, error) {
	query := `SELECT s.id, s.matchup_id, s.round_number, s.value, s.created_at
		FROM scores s
		JOIN matchups m ON m.id = s.matchup_id
		WHERE m.stage_id = $1
		ORDER BY s.id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	scores := make([]*models.Score, 0)
	for rows.Next() {
		score := &models.Score{}
		if err := rows.Scan(&score.ID, &score.MatchupID, &score.RoundNumber, &score.Value, &score.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score rows: %w", err)
	}
	return scores, nil
}

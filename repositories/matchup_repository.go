package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openarena/matchup-engine/models"
)

type MatchupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, matchup *models.Matchup) error
	// ExistsByStage is the generation guard: any persisted matchup means the
	// stage has already been generated.
	ExistsByStage(ctx context.Context, stageID int) (bool, error)
	ListByStage(ctx context.Context, stageID int) ([]*models.Matchup, error)
	CreateRosterLink(ctx context.Context, exec SQLExecutor, link *models.RosterToMatchup) error
	CreateParentLink(ctx context.Context, exec SQLExecutor, link *models.MatchupToParentMatchup) error
	ListRosterLinksByStage(ctx context.Context, stageID int) ([]*models.RosterToMatchup, error)
	ListParentLinksByStage(ctx context.Context, stageID int) ([]*models.MatchupToParentMatchup, error)
}

type postgresMatchupRepository struct {
	db *sql.DB
}

func NewPostgresMatchupRepository(db *sql.DB) MatchupRepository {
	return &postgresMatchupRepository{db: db}
}

func (r *postgresMatchupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchupRepository) Create(ctx context.Context, exec SQLExecutor, matchup *models.Matchup) error {
	query := `INSERT INTO matchups (uid, stage_id, stage_round_id, matchup_type, start_date, is_finished)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		matchup.UID,
		matchup.StageID,
		matchup.StageRoundID,
		matchup.MatchupType,
		matchup.StartDate,
		matchup.IsFinished,
	).Scan(&matchup.ID, &matchup.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create matchup for stage %d: %w", matchup.StageID, err)
	}
	return nil
}

func (r *postgresMatchupRepository) ExistsByStage(ctx context.Context, stageID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM matchups WHERE stage_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, stageID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check matchups for stage %d: %w", stageID, err)
	}
	return exists, nil
}

func (r *postgresMatchupRepository) ListByStage(ctx context.Context, stageID int) ([]*models.Matchup, error) {
	query := `SELECT m.id, m.uid, m.stage_id, m.stage_round_id, m.matchup_type, m.start_date, m.is_finished, m.created_at
		FROM matchups m
		JOIN stage_rounds sr ON sr.id = m.stage_round_id
		WHERE m.stage_id = $1
		ORDER BY sr.round_number ASC, m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchups for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	matchups := make([]*models.Matchup, 0)
	for rows.Next() {
		matchup := &models.Matchup{}
		if err := rows.Scan(
			&matchup.ID,
			&matchup.UID,
			&matchup.StageID,
			&matchup.StageRoundID,
			&matchup.MatchupType,
			&matchup.StartDate,
			&matchup.IsFinished,
			&matchup.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan matchup row: %w", err)
		}
		matchups = append(matchups, matchup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matchup rows: %w", err)
	}
	return matchups, nil
}

func (r *postgresMatchupRepository) CreateRosterLink(ctx context.Context, exec SQLExecutor, link *models.RosterToMatchup) error {
	query := `INSERT INTO roster_to_matchups (roster_id, matchup_id, is_winner)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, link.RosterID, link.MatchupID, link.IsWinner).
		Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to link roster %d to matchup %d: %w", link.RosterID, link.MatchupID, err)
	}
	return nil
}

func (r *postgresMatchupRepository) CreateParentLink(ctx context.Context, exec SQLExecutor, link *models.MatchupToParentMatchup) error {
	query := `INSERT INTO matchup_to_parent_matchups (matchup_id, parent_matchup_id)
		VALUES ($1, $2)
		RETURNING id`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, link.MatchupID, link.ParentMatchupID).
		Scan(&link.ID)
	if err != nil {
		return fmt.Errorf("failed to link matchup %d to parent %d: %w", link.MatchupID, link.ParentMatchupID, err)
	}
	return nil
}

func (r *postgresMatchupRepository) ListRosterLinksByStage(ctx context.Context, stageID int) ([]*models.RosterToMatchup, error) {
	query := `SELECT rm.id, rm.roster_id, rm.matchup_id, rm.is_winner, rm.created_at
		FROM roster_to_matchups rm
		JOIN matchups m ON m.id = rm.matchup_id
		WHERE m.stage_id = $1
		ORDER BY rm.id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster links for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	links := make([]*models.RosterToMatchup, 0)
	for rows.Next() {
		link := &models.RosterToMatchup{}
		if err := rows.Scan(&link.ID, &link.RosterID, &link.MatchupID, &link.IsWinner, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roster link row: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster link rows: %w", err)
	}
	return links, nil
}

func (r *postgresMatchupRepository) ListParentLinksByStage(ctx context.Context, stageID int) ([]*models.MatchupToParentMatchup, error) {
	query := `SELECT pl.id, pl.matchup_id, pl.parent_matchup_id
		FROM matchup_to_parent_matchups pl
		JOIN matchups m ON m.id = pl.matchup_id
		WHERE m.stage_id = $1
		ORDER BY pl.id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parent links for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	links := make([]*models.MatchupToParentMatchup, 0)
	for rows.Next() {
		link := &models.MatchupToParentMatchup{}
		if err := rows.Scan(&link.ID, &link.MatchupID, &link.ParentMatchupID); err != nil {
			return nil, fmt.Errorf("failed to scan parent link row: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parent link rows: %w", err)
	}
	return links, nil
}

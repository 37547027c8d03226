package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openarena/matchup-engine/models"
)

var ErrStageNotFound = errors.New("stage not found")

type StageRepository interface {
	GetByID(ctx context.Context, id int) (*models.Stage, error)
	ListByStatus(ctx context.Context, status models.StageStatus) ([]*models.Stage, error)
	// ListUpcomingEntryStages returns upcoming stages that start at or after
	// the given moment and have no conversion rule (tournament entry points).
	ListUpcomingEntryStages(ctx context.Context, from time.Time) ([]*models.Stage, error)
	// FindNextUpcomingInTournament returns the earliest upcoming stage of the
	// tournament starting at or after the given moment, or ErrStageNotFound.
	FindNextUpcomingInTournament(ctx context.Context, tournamentID int, after time.Time) (*models.Stage, error)
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

const stageColumns = `id, tournament_id, name, stage_type, stage_status, start_date, end_date, conversion_rule_id, created_at`

func scanStage(row interface{ Scan(dest ...interface{}) error }) (*models.Stage, error) {
	stage := &models.Stage{}
	err := row.Scan(
		&stage.ID,
		&stage.TournamentID,
		&stage.Name,
		&stage.StageType,
		&stage.StageStatus,
		&stage.StartDate,
		&stage.EndDate,
		&stage.ConversionRuleID,
		&stage.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return stage, nil
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id = $1`

	stage, err := scanStage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan stage by id %d: %w", id, err)
	}
	return stage, nil
}

func (r *postgresStageRepository) ListByStatus(ctx context.Context, status models.StageStatus) ([]*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE stage_status = $1 ORDER BY start_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages with status %s: %w", status, err)
	}
	defer rows.Close()

	return collectStages(rows)
}

func (r *postgresStageRepository) ListUpcomingEntryStages(ctx context.Context, from time.Time) ([]*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages
		WHERE stage_status = $1 AND start_date >= $2 AND conversion_rule_id IS NULL
		ORDER BY start_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.StageStatusUpcoming, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming entry stages: %w", err)
	}
	defer rows.Close()

	return collectStages(rows)
}

func (r *postgresStageRepository) FindNextUpcomingInTournament(ctx context.Context, tournamentID int, after time.Time) (*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages
		WHERE tournament_id = $1 AND stage_status = $2 AND start_date >= $3
		ORDER BY start_date ASC, id ASC
		LIMIT 1`

	stage, err := scanStage(r.db.QueryRowContext(ctx, query, tournamentID, models.StageStatusUpcoming, after))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan next upcoming stage for tournament %d: %w", tournamentID, err)
	}
	return stage, nil
}

func collectStages(rows *sql.Rows) ([]*models.Stage, error) {
	stages := make([]*models.Stage, 0)
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", err)
		}
		stages = append(stages, stage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stage rows: %w", err)
	}
	return stages, nil
}

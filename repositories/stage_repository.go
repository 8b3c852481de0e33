package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inkzone/bracket-engine/models"
)

var ErrStageNotFound = errors.New("stage not found")

// StageRepository persists the static shape of a stage: the stage row itself
// plus its groups and rounds. Creation methods take an SQLExecutor so the
// whole tree lands in one transaction with the matches.
type StageRepository interface {
	Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	GetByID(ctx context.Context, id int64) (*models.Stage, error)
	ListByTournament(ctx context.Context, tournamentID int64) ([]*models.Stage, error)
	Delete(ctx context.Context, exec SQLExecutor, id int64) error

	CreateGroup(ctx context.Context, exec SQLExecutor, group *models.Group) error
	ListGroups(ctx context.Context, stageID int64) ([]*models.Group, error)

	CreateRound(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListRounds(ctx context.Context, stageID int64) ([]*models.Round, error)
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	settings, err := json.Marshal(stage.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode stage settings: %w", err)
	}

	query := `
		INSERT INTO stages (tournament_id, name, type, number, settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return exec.QueryRowContext(ctx, query,
		stage.TournamentID,
		stage.Name,
		stage.Type,
		stage.Number,
		settings,
	).Scan(&stage.ID, &stage.CreatedAt)
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int64) (*models.Stage, error) {
	query := `
		SELECT id, tournament_id, name, type, number, settings, created_at
		FROM stages
		WHERE id = $1`

	stage, err := scanStage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return stage, nil
}

func (r *postgresStageRepository) ListByTournament(ctx context.Context, tournamentID int64) ([]*models.Stage, error) {
	query := `
		SELECT id, tournament_id, name, type, number, settings, created_at
		FROM stages
		WHERE tournament_id = $1
		ORDER BY number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

// Delete removes a stage; groups, rounds, matches and games go with it via
// ON DELETE CASCADE.
func (r *postgresStageRepository) Delete(ctx context.Context, exec SQLExecutor, id int64) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStageNotFound
	}
	return nil
}

func (r *postgresStageRepository) CreateGroup(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	query := `
		INSERT INTO stage_groups (stage_id, number, type)
		VALUES ($1, $2, $3)
		RETURNING id`
	return exec.QueryRowContext(ctx, query, group.StageID, group.Number, group.Type).Scan(&group.ID)
}

func (r *postgresStageRepository) ListGroups(ctx context.Context, stageID int64) ([]*models.Group, error) {
	query := `
		SELECT id, stage_id, number, type
		FROM stage_groups
		WHERE stage_id = $1
		ORDER BY number ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.StageID, &g.Number, &g.Type); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *postgresStageRepository) CreateRound(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO stage_rounds (stage_id, group_id, number, best_of)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return exec.QueryRowContext(ctx, query, round.StageID, round.GroupID, round.Number, round.BestOf).Scan(&round.ID)
}

func (r *postgresStageRepository) ListRounds(ctx context.Context, stageID int64) ([]*models.Round, error) {
	query := `
		SELECT id, stage_id, group_id, number, best_of
		FROM stage_rounds
		WHERE stage_id = $1
		ORDER BY group_id ASC, number ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round := &models.Round{}
		if err := rows.Scan(&round.ID, &round.StageID, &round.GroupID, &round.Number, &round.BestOf); err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStage(row rowScanner) (*models.Stage, error) {
	stage := &models.Stage{}
	var settings []byte
	if err := row.Scan(
		&stage.ID,
		&stage.TournamentID,
		&stage.Name,
		&stage.Type,
		&stage.Number,
		&settings,
		&stage.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &stage.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode stage settings: %w", err)
		}
	}
	return stage, nil
}

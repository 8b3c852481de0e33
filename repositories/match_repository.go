package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkzone/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
)

// MatchRepository persists match rows and their games. A match's opponent
// slots are flattened into op1_*/op2_* columns; the bye flag distinguishes a
// BYE slot from a to-be-determined one, since both have no participant id.
type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateTopology(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int64) (*models.Match, error)
	ListByStage(ctx context.Context, stageID int64) ([]*models.Match, error)

	// Update writes the mutable state of a match guarded by the version
	// column: the row is matched at the version the engine read, and bumped
	// to the engine's new one. Zero rows affected means a concurrent writer
	// won, reported as ErrMatchVersionConflict.
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error

	ReplaceGames(ctx context.Context, exec SQLExecutor, matchID int64, games []models.Game) error
	ListGamesByStage(ctx context.Context, stageID int64) ([]models.Game, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches (
			stage_id, group_id, round_id, number, status, best_of,
			op1_bye, op1_participant_id, op1_position, op1_forfeit, op1_score, op1_result,
			op2_bye, op2_participant_id, op2_position, op2_forfeit, op2_score, op2_result,
			version, last_game_finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at`

	s1 := flattenSlot(m.Opponent1)
	s2 := flattenSlot(m.Opponent2)

	return exec.QueryRowContext(ctx, query,
		m.StageID, m.GroupID, m.RoundID, m.Number, m.Status, m.BestOf,
		s1.bye, s1.participantID, s1.position, s1.forfeit, s1.score, s1.result,
		s2.bye, s2.participantID, s2.position, s2.forfeit, s2.score, s2.result,
		m.Version, m.LastGameFinishedAt,
	).Scan(&m.ID, &m.CreatedAt)
}

// UpdateTopology writes the source/next edges in the second pass of tree
// creation, once every match row has its real id.
func (r *postgresMatchRepository) UpdateTopology(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches SET
			source1_id = $1,
			source2_id = $2,
			winner_next_id = $3,
			winner_next_slot = $4,
			loser_next_id = $5,
			loser_next_slot = $6
		WHERE id = $7`

	result, err := exec.ExecContext(ctx, query,
		m.Source1ID, m.Source2ID,
		m.WinnerNextID, m.WinnerNextSlot,
		m.LoserNextID, m.LoserNextSlot,
		m.ID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrMatchNotFound
	}
	return nil
}

const matchColumns = `
	id, stage_id, group_id, round_id, number, status, best_of,
	op1_bye, op1_participant_id, op1_position, op1_forfeit, op1_score, op1_result,
	op2_bye, op2_participant_id, op2_position, op2_forfeit, op2_score, op2_result,
	source1_id, source2_id, winner_next_id, winner_next_slot, loser_next_id, loser_next_slot,
	version, last_game_finished_at, created_at`

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, stageID int64) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE stage_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches SET
			status = $1,
			op1_bye = $2, op1_participant_id = $3, op1_position = $4, op1_forfeit = $5, op1_score = $6, op1_result = $7,
			op2_bye = $8, op2_participant_id = $9, op2_position = $10, op2_forfeit = $11, op2_score = $12, op2_result = $13,
			version = $14,
			last_game_finished_at = $15
		WHERE id = $16 AND version = $17`

	s1 := flattenSlot(m.Opponent1)
	s2 := flattenSlot(m.Opponent2)

	result, err := exec.ExecContext(ctx, query,
		m.Status,
		s1.bye, s1.participantID, s1.position, s1.forfeit, s1.score, s1.result,
		s2.bye, s2.participantID, s2.position, s2.forfeit, s2.score, s2.result,
		m.Version,
		m.LastGameFinishedAt,
		m.ID, m.Version-1,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrMatchVersionConflict
	}
	return nil
}

func (r *postgresMatchRepository) ReplaceGames(ctx context.Context, exec SQLExecutor, matchID int64, games []models.Game) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM match_games WHERE match_id = $1`, matchID); err != nil {
		return err
	}

	query := `
		INSERT INTO match_games (match_id, number, winner_side, map_id, mode_id, side1_user_ids, side2_user_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for i := range games {
		g := &games[i]
		err := exec.QueryRowContext(ctx, query,
			matchID,
			g.Number,
			g.WinnerSide,
			g.MapID,
			g.ModeID,
			pq.Array(g.Side1UserIDs),
			pq.Array(g.Side2UserIDs),
			g.CreatedAt,
		).Scan(&g.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) ListGamesByStage(ctx context.Context, stageID int64) ([]models.Game, error) {
	query := `
		SELECT g.id, g.match_id, g.number, g.winner_side, g.map_id, g.mode_id, g.side1_user_ids, g.side2_user_ids, g.created_at
		FROM match_games g
		JOIN matches m ON m.id = g.match_id
		WHERE m.stage_id = $1
		ORDER BY g.match_id ASC, g.number ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(
			&g.ID,
			&g.MatchID,
			&g.Number,
			&g.WinnerSide,
			&g.MapID,
			&g.ModeID,
			pq.Array(&g.Side1UserIDs),
			pq.Array(&g.Side2UserIDs),
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// flatSlot is the column form of one opponent slot.
type flatSlot struct {
	bye           bool
	participantID *int64
	position      *int
	forfeit       bool
	score         *int
	result        models.Result
}

func flattenSlot(pr *models.ParticipantResult) flatSlot {
	if pr == nil {
		return flatSlot{bye: true}
	}
	return flatSlot{
		participantID: pr.ID,
		position:      pr.Position,
		forfeit:       pr.Forfeit,
		score:         pr.Score,
		result:        pr.Result,
	}
}

func unflattenSlot(s flatSlot) *models.ParticipantResult {
	if s.bye {
		return nil
	}
	return &models.ParticipantResult{
		ID:       s.participantID,
		Position: s.position,
		Forfeit:  s.forfeit,
		Score:    s.score,
		Result:   s.result,
	}
}

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	var s1, s2 flatSlot
	if err := row.Scan(
		&m.ID, &m.StageID, &m.GroupID, &m.RoundID, &m.Number, &m.Status, &m.BestOf,
		&s1.bye, &s1.participantID, &s1.position, &s1.forfeit, &s1.score, &s1.result,
		&s2.bye, &s2.participantID, &s2.position, &s2.forfeit, &s2.score, &s2.result,
		&m.Source1ID, &m.Source2ID, &m.WinnerNextID, &m.WinnerNextSlot, &m.LoserNextID, &m.LoserNextSlot,
		&m.Version, &m.LastGameFinishedAt, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Opponent1 = unflattenSlot(s1)
	m.Opponent2 = unflattenSlot(s2)
	return m, nil
}

package repositories

import (
	"context"
	"database/sql"

	"github.com/inkzone/bracket-engine/brackets"
	"github.com/inkzone/bracket-engine/models"
	"github.com/lib/pq"
)

// HistoryRepository fetches the raw rows behind a team's set history: every
// completed match the team took part in, plus the games of those matches.
// Assembly and orientation are the engine's job, not SQL's.
type HistoryRepository interface {
	ListTeamMatches(ctx context.Context, teamID int64) ([]brackets.TeamMatchRow, error)
	ListTeamGames(ctx context.Context, teamID int64) ([]brackets.TeamGameRow, error)
}

type postgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) HistoryRepository {
	return &postgresHistoryRepository{db: db}
}

func (r *postgresHistoryRepository) ListTeamMatches(ctx context.Context, teamID int64) ([]brackets.TeamMatchRow, error) {
	query := `
		SELECT
			m.id, m.op1_participant_id, m.op2_participant_id,
			g.type, r.number,
			(SELECT MAX(r2.number) FROM stage_rounds r2 WHERE r2.group_id = g.id)
		FROM matches m
		JOIN stage_groups g ON g.id = m.group_id
		JOIN stage_rounds r ON r.id = m.round_id
		WHERE m.status >= $1
		  AND (m.op1_participant_id = $2 OR m.op2_participant_id = $2)
		ORDER BY m.created_at ASC, m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.StatusCompleted, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]brackets.TeamMatchRow, 0)
	for rows.Next() {
		var row brackets.TeamMatchRow
		if err := rows.Scan(
			&row.MatchID,
			&row.Opponent1ID,
			&row.Opponent2ID,
			&row.GroupType,
			&row.RoundNumber,
			&row.MaxRoundNumber,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *postgresHistoryRepository) ListTeamGames(ctx context.Context, teamID int64) ([]brackets.TeamGameRow, error) {
	query := `
		SELECT
			g.match_id, g.number,
			CASE g.winner_side WHEN 1 THEN m.op1_participant_id ELSE m.op2_participant_id END,
			g.mode_id, g.map_id,
			g.side1_user_ids, g.side2_user_ids,
			m.op1_participant_id, m.op2_participant_id
		FROM match_games g
		JOIN matches m ON m.id = g.match_id
		WHERE m.status >= $1
		  AND (m.op1_participant_id = $2 OR m.op2_participant_id = $2)
		ORDER BY g.match_id ASC, g.number ASC`

	rows, err := r.db.QueryContext(ctx, query, models.StatusCompleted, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]brackets.TeamGameRow, 0)
	for rows.Next() {
		var row brackets.TeamGameRow
		var side1, side2 []int64
		var op1ID, op2ID *int64
		if err := rows.Scan(
			&row.MatchID,
			&row.Number,
			&row.WinnerID,
			&row.ModeID,
			&row.MapID,
			pq.Array(&side1),
			pq.Array(&side2),
			&op1ID,
			&op2ID,
		); err != nil {
			return nil, err
		}
		row.Players = gamePlayers(side1, op1ID)
		row.Players = append(row.Players, gamePlayers(side2, op2ID)...)
		out = append(out, row)
	}
	return out, rows.Err()
}

func gamePlayers(userIDs []int64, teamID *int64) []brackets.GamePlayer {
	if teamID == nil || len(userIDs) == 0 {
		return nil
	}
	players := make([]brackets.GamePlayer, 0, len(userIDs))
	for _, id := range userIDs {
		players = append(players, brackets.GamePlayer{UserID: id, TeamID: *teamID})
	}
	return players
}

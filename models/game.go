package models

import "time"

// GameResult is one reported game (map) of a match, as submitted by a caller.
type GameResult struct {
	WinnerSide Side    `json:"winner_side"`
	MapID      *int64  `json:"map_id,omitempty"`
	ModeID     *string `json:"mode_id,omitempty"`
	// Users who physically played the game, per side. Display only; the
	// engine never checks eligibility against these.
	Side1UserIDs []int64 `json:"side1_user_ids,omitempty"`
	Side2UserIDs []int64 `json:"side2_user_ids,omitempty"`
}

// Game is a persisted game row of a match, numbered from 1 in report order.
type Game struct {
	ID         int64     `json:"id" db:"id"`
	MatchID    int64     `json:"match_id" db:"match_id"`
	Number     int       `json:"number" db:"number"`
	WinnerSide Side      `json:"winner_side" db:"winner_side"`
	MapID      *int64    `json:"map_id,omitempty" db:"map_id"`
	ModeID     *string   `json:"mode_id,omitempty" db:"mode_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Side1UserIDs []int64 `json:"side1_user_ids,omitempty" db:"-"`
	Side2UserIDs []int64 `json:"side2_user_ids,omitempty" db:"-"`
}

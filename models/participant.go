package models

import "time"

// Participant is a tournament entrant (a team or a solo player); the engine
// treats it as an opaque id plus registration time for seeding tie-breaks.
type Participant struct {
	ID           int64     `json:"id" db:"id"`
	TournamentID int64     `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Seed         *int      `json:"seed,omitempty" db:"seed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

package models

import "time"

// TournamentStatus mirrors the ENUM in the DB.
type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCanceled  TournamentStatus = "canceled"
)

type Tournament struct {
	ID          int64            `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	OrganizerID int64            `json:"organizer_id" db:"organizer_id"`
	Status      TournamentStatus `json:"status" db:"status"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	LogoKey     *string          `json:"-" db:"logo_key"`
	LogoURL     *string          `json:"logo_url,omitempty" db:"-"`

	// Optional linked data, populated by services, not mapped directly.
	Stages       []Stage       `json:"stages,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}

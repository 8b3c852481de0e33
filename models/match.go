package models

import "time"

// Status is the match lifecycle state. The numeric order is part of the
// contract: comparing two statuses answers "has this match progressed past
// point X" without branching on identity.
type Status int

const (
	StatusLocked Status = iota
	StatusWaiting
	StatusReady
	StatusRunning
	StatusCompleted
	StatusArchived
)

func (s Status) String() string {
	switch s {
	case StatusLocked:
		return "locked"
	case StatusWaiting:
		return "waiting"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusArchived:
		return "archived"
	}
	return "unknown"
}

// Side identifies one of the two opponent slots of a match.
type Side int

const (
	SideOne Side = 1
	SideTwo Side = 2
)

// Other returns the opposite slot.
func (s Side) Other() Side {
	if s == SideOne {
		return SideTwo
	}
	return SideOne
}

// Result is the per-opponent outcome of a completed match.
type Result string

const (
	ResultNone Result = ""
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// ParticipantResult is one opponent slot of a match. A nil *ParticipantResult
// on the match means BYE; a non-nil slot with a nil ID means the participant
// is still to be determined by an upstream match.
type ParticipantResult struct {
	ID       *int64 `json:"id" db:"participant_id"`
	Position *int   `json:"position,omitempty" db:"position"`
	Forfeit  bool   `json:"forfeit,omitempty" db:"forfeit"`
	Score    *int   `json:"score,omitempty" db:"score"`
	Result   Result `json:"result,omitempty" db:"result"`
}

// Match is one node of the bracket graph. The topology fields (sources and
// next-match links) are written once by the generator; everything else
// mutates as results are reported.
type Match struct {
	ID      int64 `json:"id" db:"id"`
	StageID int64 `json:"stage_id" db:"stage_id"`
	GroupID int64 `json:"group_id" db:"group_id"`
	RoundID int64 `json:"round_id" db:"round_id"`
	Number  int   `json:"number" db:"number"`

	Status    Status             `json:"status" db:"status"`
	Opponent1 *ParticipantResult `json:"opponent1"`
	Opponent2 *ParticipantResult `json:"opponent2"`
	BestOf    int                `json:"best_of" db:"best_of"`

	// Feeder matches whose outcome populates this match's slots.
	Source1ID *int64 `json:"source1_id,omitempty" db:"source1_id"`
	Source2ID *int64 `json:"source2_id,omitempty" db:"source2_id"`

	// Downstream consumers of this match's winner and loser.
	WinnerNextID   *int64 `json:"winner_next_id,omitempty" db:"winner_next_id"`
	WinnerNextSlot int    `json:"winner_next_slot,omitempty" db:"winner_next_slot"`
	LoserNextID    *int64 `json:"loser_next_id,omitempty" db:"loser_next_id"`
	LoserNextSlot  int    `json:"loser_next_slot,omitempty" db:"loser_next_slot"`

	// Version backs the compare-and-swap on persistence; the engine bumps it
	// on every mutation.
	Version int `json:"version" db:"version"`

	Games []Game `json:"games,omitempty" db:"-"`

	LastGameFinishedAt *time.Time `json:"last_game_finished_at,omitempty" db:"last_game_finished_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

// Opponent returns the slot for the given side.
func (m *Match) Opponent(side Side) *ParticipantResult {
	if side == SideOne {
		return m.Opponent1
	}
	return m.Opponent2
}

// SetOpponent replaces the slot for the given side.
func (m *Match) SetOpponent(side Side, pr *ParticipantResult) {
	if side == SideOne {
		m.Opponent1 = pr
	} else {
		m.Opponent2 = pr
	}
}

// Winner returns the participant id of the winning slot, or nil if the match
// is not completed or ended in a draw.
func (m *Match) Winner() *int64 {
	if m.Status < StatusCompleted {
		return nil
	}
	if m.Opponent1 != nil && m.Opponent1.Result == ResultWin {
		return m.Opponent1.ID
	}
	if m.Opponent2 != nil && m.Opponent2.Result == ResultWin {
		return m.Opponent2.ID
	}
	return nil
}

// Loser returns the participant id of the losing slot, or nil if the match is
// not completed, ended in a draw, or the losing slot is a BYE.
func (m *Match) Loser() *int64 {
	if m.Status < StatusCompleted {
		return nil
	}
	if m.Opponent1 != nil && m.Opponent1.Result == ResultLoss {
		return m.Opponent1.ID
	}
	if m.Opponent2 != nil && m.Opponent2.Result == ResultLoss {
		return m.Opponent2.ID
	}
	return nil
}

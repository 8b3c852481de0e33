package models

import "time"

// StageType enumerates the supported bracket shapes, matching the ENUM in the DB.
type StageType string

const (
	StageSingleElimination StageType = "single_elimination"
	StageDoubleElimination StageType = "double_elimination"
	StageRoundRobin        StageType = "round_robin"
	StageSwiss             StageType = "swiss"
)

// SeedOrdering selects how a ranked seeding is distributed into bracket slots.
type SeedOrdering string

const (
	// OrderingNatural places seeds into slots in the order they were given.
	OrderingNatural SeedOrdering = "natural"
	// OrderingCrossing places seed 1 against the last slot, seed 2 against the
	// second-to-last and so on, so top seeds meet as late as possible.
	OrderingCrossing SeedOrdering = "crossing"
	// OrderingManual uses the caller-supplied slot positions verbatim.
	OrderingManual SeedOrdering = "manual"
	// OrderingSnake distributes seeds across round-robin groups in a snake
	// pattern so group strength stays balanced.
	OrderingSnake SeedOrdering = "snake"
)

// GrandFinalType controls the extra group appended to a double elimination stage.
type GrandFinalType string

const (
	GrandFinalNone   GrandFinalType = "none"
	GrandFinalSimple GrandFinalType = "simple"
	GrandFinalDouble GrandFinalType = "double"
)

// RoundRobinMode selects single or double (home/away) legs.
type RoundRobinMode string

const (
	RoundRobinSimple RoundRobinMode = "simple"
	RoundRobinDouble RoundRobinMode = "double"
)

// GroupType records the semantic role of a group at build time, so round
// naming never has to guess it from the group number.
type GroupType string

const (
	GroupSingleBracket GroupType = "single_bracket"
	GroupWinners       GroupType = "winners"
	GroupLosers        GroupType = "losers"
	GroupFinal         GroupType = "final"
	GroupConsolation   GroupType = "consolation"
	GroupRoundRobin    GroupType = "round_robin"
	GroupSwiss         GroupType = "swiss"
)

// StageSettings carries every tunable of stage generation. Fields are only
// meaningful for the stage types that read them; BuildStage validates the
// combination before touching anything.
type StageSettings struct {
	Size           int            `json:"size,omitempty" db:"size"`
	SeedOrdering   SeedOrdering   `json:"seed_ordering,omitempty" db:"seed_ordering"`
	BalanceByes    bool           `json:"balance_byes,omitempty" db:"balance_byes"`
	ManualOrdering []int          `json:"manual_ordering,omitempty" db:"-"`
	BestOf         int            `json:"best_of,omitempty" db:"best_of"`

	// Elimination only.
	ConsolationFinal bool           `json:"consolation_final,omitempty" db:"consolation_final"`
	SkipFirstRound   bool           `json:"skip_first_round,omitempty" db:"skip_first_round"`
	GrandFinal       GrandFinalType `json:"grand_final,omitempty" db:"grand_final"`

	// Round robin only.
	GroupCount     int            `json:"group_count,omitempty" db:"group_count"`
	RoundRobinMode RoundRobinMode `json:"round_robin_mode,omitempty" db:"round_robin_mode"`

	// Swiss only.
	SwissGroupCount int `json:"swiss_group_count,omitempty" db:"swiss_group_count"`
	SwissRoundCount int `json:"swiss_round_count,omitempty" db:"swiss_round_count"`
}

// Stage is one phase of a tournament. Its Group/Round/Match structure is
// created once by the generator and never changes shape afterwards; only
// match results, statuses and timestamps mutate while it is played.
type Stage struct {
	ID           int64         `json:"id" db:"id"`
	TournamentID int64         `json:"tournament_id" db:"tournament_id"`
	Name         string        `json:"name" db:"name"`
	Type         StageType     `json:"type" db:"type"`
	Number       int           `json:"number" db:"number"`
	Settings     StageSettings `json:"settings" db:"-"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// Group is a bracket section within a stage. For double elimination the
// numbers conventionally run winners(1), losers(2), grand final(3), but code
// must branch on Type, never on Number.
type Group struct {
	ID      int64     `json:"id" db:"id"`
	StageID int64     `json:"stage_id" db:"stage_id"`
	Number  int       `json:"number" db:"number"`
	Type    GroupType `json:"type" db:"type"`
}

// Round groups the matches played in parallel at one depth of a group.
// Rounds have no stored name; display names are derived from the numbers.
type Round struct {
	ID      int64 `json:"id" db:"id"`
	StageID int64 `json:"stage_id" db:"stage_id"`
	GroupID int64 `json:"group_id" db:"group_id"`
	Number  int   `json:"number" db:"number"`
	BestOf  int   `json:"best_of" db:"best_of"`
}

package brackets

import (
	"math"

	"github.com/inkzone/bracket-engine/models"
)

// TeamMatchRow is one completed match of the viewed team, as fetched by the
// caller. Opponent slots keep their stored orientation; SetHistory fixes the
// orientation itself.
type TeamMatchRow struct {
	MatchID        int64
	Opponent1ID    *int64
	Opponent2ID    *int64
	GroupType      models.GroupType
	RoundNumber    int
	MaxRoundNumber int
}

// GamePlayer is one user who played a game, tagged with the team they
// played for.
type GamePlayer struct {
	UserID int64
	TeamID int64
}

// TeamGameRow is one game row of a team's match.
type TeamGameRow struct {
	MatchID  int64
	Number   int
	WinnerID *int64 // participant id of the game winner
	ModeID   *string
	MapID    *int64
	Players  []GamePlayer
}

// PlayedGame is one map of a played set, from the viewed team's perspective.
type PlayedGame struct {
	ModeID *string `json:"mode_id,omitempty"`
	MapID  *int64  `json:"map_id,omitempty"`
	Won    bool    `json:"won"`
}

// PlayedSet is one match of the viewed team's history. Score is always
// oriented with the viewed team first, derived from who won each game rather
// than from the stored score columns, whose order is slot-based.
type PlayedSet struct {
	MatchID        int64        `json:"match_id"`
	OpponentID     *int64       `json:"opponent_id,omitempty"`
	Score          [2]int       `json:"score"`
	RoundName      string       `json:"round_name"`
	Games          []PlayedGame `json:"games"`
	OpponentRoster []int64      `json:"opponent_roster,omitempty"`
}

// SetHistory assembles the per-team set history from raw match and game rows
// already scoped to the team. Matches come back in the order given.
func SetHistory(teamID int64, matches []TeamMatchRow, games []TeamGameRow) []PlayedSet {
	gamesByMatch := make(map[int64][]TeamGameRow, len(matches))
	for _, g := range games {
		gamesByMatch[g.MatchID] = append(gamesByMatch[g.MatchID], g)
	}

	sets := make([]PlayedSet, 0, len(matches))
	for _, row := range matches {
		set := PlayedSet{
			MatchID:   row.MatchID,
			RoundName: DisplayName(row.GroupType, row.RoundNumber, row.MaxRoundNumber),
		}

		if row.Opponent1ID != nil && *row.Opponent1ID != teamID {
			set.OpponentID = copyID(row.Opponent1ID)
		} else if row.Opponent2ID != nil && *row.Opponent2ID != teamID {
			set.OpponentID = copyID(row.Opponent2ID)
		}

		rosterSeen := make(map[int64]bool)
		for _, g := range gamesByMatch[row.MatchID] {
			won := g.WinnerID != nil && *g.WinnerID == teamID
			set.Games = append(set.Games, PlayedGame{ModeID: g.ModeID, MapID: g.MapID, Won: won})
			if won {
				set.Score[0]++
			} else if g.WinnerID != nil {
				set.Score[1]++
			}
			for _, p := range g.Players {
				if p.TeamID != teamID && !rosterSeen[p.UserID] {
					rosterSeen[p.UserID] = true
					set.OpponentRoster = append(set.OpponentRoster, p.UserID)
				}
			}
		}

		sets = append(sets, set)
	}
	return sets
}

// WinTotals is a won/total pair with a rounded percentage.
type WinTotals struct {
	Won        int `json:"won"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// WinCountSummary aggregates a set history at the set and map level.
type WinCountSummary struct {
	Sets WinTotals `json:"sets"`
	Maps WinTotals `json:"maps"`
}

// WinCounts summarizes a set history. A set counts as won when the viewed
// team took strictly more than half of its maps.
func WinCounts(sets []PlayedSet) WinCountSummary {
	var out WinCountSummary
	for _, s := range sets {
		out.Sets.Total++
		if s.Score[0] > s.Score[1] {
			out.Sets.Won++
		}
		out.Maps.Total += len(s.Games)
		for _, g := range s.Games {
			if g.Won {
				out.Maps.Won++
			}
		}
	}
	out.Sets.Percentage = percentage(out.Sets.Won, out.Sets.Total)
	out.Maps.Percentage = percentage(out.Maps.Won, out.Maps.Total)
	return out
}

func percentage(won, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(won) / float64(total) * 100))
}

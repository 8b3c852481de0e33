package brackets

import (
	"fmt"

	"github.com/inkzone/bracket-engine/models"
)

// RoundName derives the base display name of a round from the group's
// recorded type, the round number and the highest round number of the group.
// Names are never stored; they are recomputed from the numbers on demand.
func RoundName(groupType models.GroupType, roundNumber, maxRoundNumber int) string {
	if groupType == models.GroupFinal {
		if roundNumber == 1 {
			return "Grand Final"
		}
		return "Bracket Reset"
	}
	if groupType == models.GroupConsolation {
		return "Consolation Final"
	}
	if roundNumber == maxRoundNumber {
		return "Finals"
	}
	return fmt.Sprintf("Round %d", roundNumber)
}

// DisplayName is RoundName with the winners/losers label applied for
// double elimination groups.
func DisplayName(groupType models.GroupType, roundNumber, maxRoundNumber int) string {
	base := RoundName(groupType, roundNumber, maxRoundNumber)
	switch groupType {
	case models.GroupWinners:
		return "Winners " + base
	case models.GroupLosers:
		return "Losers " + base
	}
	return base
}

// RoundNameInTree resolves the display name of a round inside a stage tree.
func RoundNameInTree(tree *StageTree, roundID int64) (string, error) {
	round := tree.Round(roundID)
	if round == nil {
		return "", &NotFoundError{Resource: "round", ID: roundID}
	}
	group := tree.Group(round.GroupID)
	if group == nil {
		return "", &NotFoundError{Resource: "group", ID: round.GroupID}
	}
	return DisplayName(group.Type, round.Number, tree.MaxRoundNumber(group.ID)), nil
}

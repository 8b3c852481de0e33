package brackets

import (
	"github.com/inkzone/bracket-engine/models"
)

// Pairer decides the pairings of one swiss round. Implementations get the
// group's participants and every pairing already played in the group, and
// return the next round's pairs. The engine owns the skeleton and the gating;
// the pairing policy itself stays external.
type Pairer interface {
	Pair(participants []int64, played [][2]int64) ([][2]int64, error)
}

// buildSwiss builds only the group/round/match skeleton: the round and group
// counts are fixed up front, every match starts Locked with both slots to be
// determined, and PairSwissRound fills one round at a time.
func buildSwiss(stage *models.Stage, seeding []*int64) (*StageTree, error) {
	settings := stage.Settings

	groupCount := settings.SwissGroupCount
	if groupCount == 0 {
		groupCount = 1
	}
	participants := countParticipants(seeding)
	if groupCount < 1 || groupCount > participants/2 {
		return nil, validationErrorf("swiss_group_count", "cannot split %d participants into %d groups", participants, groupCount)
	}

	perGroup := participants / groupCount
	roundCount := settings.SwissRoundCount
	if roundCount == 0 {
		roundCount = defaultSwissRounds(perGroup)
	}
	if roundCount < 1 {
		return nil, validationErrorf("swiss_round_count", "must be positive, got %d", roundCount)
	}

	bestOf := settings.BestOf
	if bestOf == 0 {
		bestOf = 1
	}

	b := newTreeBuilder(stage)
	for g, groupSize := range swissGroupSizes(participants, groupCount) {
		group := b.addGroup(g+1, models.GroupSwiss)
		matchesPerRound := groupSize / 2
		for r := 1; r <= roundCount; r++ {
			round := b.addRound(group, r, bestOf)
			for i := 1; i <= matchesPerRound; i++ {
				b.addMatch(round, i, tbd(), tbd())
			}
		}
	}

	settle(b.tree)
	return b.tree, nil
}

// swissGroupSizes divides total participants into near-even group sizes, the
// remainder going to the leading groups.
func swissGroupSizes(total, groupCount int) []int {
	sizes := make([]int, groupCount)
	for g := range sizes {
		sizes[g] = total / groupCount
		if g < total%groupCount {
			sizes[g]++
		}
	}
	return sizes
}

// SwissGroups splits an ordered participant list into the blocks the swiss
// builder sized its groups by, so callers pairing a group can recover its
// membership from the same ordering the stage was generated with.
func SwissGroups(participants []int64, groupCount int) [][]int64 {
	if groupCount < 1 {
		groupCount = 1
	}
	groups := make([][]int64, 0, groupCount)
	idx := 0
	for _, size := range swissGroupSizes(len(participants), groupCount) {
		groups = append(groups, participants[idx:idx+size])
		idx += size
	}
	return groups
}

// defaultSwissRounds is ceil(log2(n)), the usual number of rounds needed to
// produce a single undefeated participant.
func defaultSwissRounds(n int) int {
	if n < 2 {
		return 1
	}
	return log2(n)
}

// PairSwissRound fills the next unpaired round of a swiss group using the
// supplied pairing policy. The previous round must be fully completed first;
// pairing out of order fails with a conflict, mirroring how elimination
// matches unlock only when their feeders finish.
func PairSwissRound(tree *StageTree, groupNumber int, participants []int64, pairer Pairer) ([]*models.Match, error) {
	group := tree.GroupByNumber(groupNumber)
	if group == nil || group.Type != models.GroupSwiss {
		return nil, &NotFoundError{Resource: "swiss group", ID: int64(groupNumber)}
	}

	rounds := tree.RoundsOfGroup(group.ID)
	var target *models.Round
	var played [][2]int64
	for _, round := range rounds {
		matches := tree.MatchesOfRound(round.ID)
		if roundIsPaired(matches) {
			if !roundIsCompleted(matches) {
				return nil, conflictErrorf("round %d is still being played", round.Number)
			}
			for _, m := range matches {
				if m.Opponent1 != nil && m.Opponent2 != nil && m.Opponent1.ID != nil && m.Opponent2.ID != nil {
					played = append(played, [2]int64{*m.Opponent1.ID, *m.Opponent2.ID})
				}
			}
			continue
		}
		target = round
		break
	}
	if target == nil {
		return nil, conflictErrorf("all %d swiss rounds are already paired", len(rounds))
	}

	pairs, err := pairer.Pair(participants, played)
	if err != nil {
		return nil, err
	}

	matches := tree.MatchesOfRound(target.ID)
	if len(pairs) > len(matches) {
		return nil, validationErrorf("pairs", "pairer produced %d pairs for %d match slots", len(pairs), len(matches))
	}

	changed := make([]*models.Match, 0, len(pairs))
	for i, pair := range pairs {
		m := matches[i]
		m.Opponent1 = known(pair[0])
		m.Opponent2 = known(pair[1])
		m.Status = models.StatusReady
		m.Version++
		changed = append(changed, m)
	}
	return changed, nil
}

func roundIsPaired(matches []*models.Match) bool {
	for _, m := range matches {
		if m.Opponent1 != nil && m.Opponent1.ID != nil {
			return true
		}
	}
	return false
}

func roundIsCompleted(matches []*models.Match) bool {
	for _, m := range matches {
		if m.Opponent1 != nil && m.Opponent1.ID != nil && m.Status < models.StatusCompleted {
			return false
		}
	}
	return true
}

package brackets

import (
	"github.com/inkzone/bracket-engine/models"
)

// buildRoundRobin partitions the seeding into groups and schedules every
// pairing with the circle method: one participant stays fixed while the rest
// rotate, so each round pairs everyone at most once and the round count is
// groupSize-1 (groupSize when odd, via a rotating bye). Double mode appends a
// mirrored second leg.
func buildRoundRobin(stage *models.Stage, seeding []*int64) (*StageTree, error) {
	settings := stage.Settings

	groupCount := settings.GroupCount
	if groupCount == 0 {
		groupCount = 1
	}
	if groupCount < 1 || groupCount > countParticipants(seeding)/2 {
		return nil, validationErrorf("group_count", "cannot split %d participants into %d groups", countParticipants(seeding), groupCount)
	}

	mode := settings.RoundRobinMode
	if mode == "" {
		mode = RoundRobinDefaultMode
	}
	if mode != models.RoundRobinSimple && mode != models.RoundRobinDouble {
		return nil, validationErrorf("round_robin_mode", "unsupported mode %q", mode)
	}

	bestOf := settings.BestOf
	if bestOf == 0 {
		bestOf = 1
	}

	ordering := settings.SeedOrdering
	if ordering == "" {
		ordering = models.OrderingSnake
	}
	groups, err := splitIntoGroups(compactSeeding(seeding), groupCount, ordering)
	if err != nil {
		return nil, err
	}

	b := newTreeBuilder(stage)
	for gi, members := range groups {
		if len(members) < 2 {
			return nil, validationErrorf("group_count", "group %d would have %d participants", gi+1, len(members))
		}
		group := b.addGroup(gi+1, models.GroupRoundRobin)
		scheduleGroup(b, group, members, mode, bestOf)
	}

	settle(b.tree)
	return b.tree, nil
}

// RoundRobinDefaultMode is a single leg per pairing.
const RoundRobinDefaultMode = models.RoundRobinSimple

// compactSeeding drops explicit BYE entries: round robin plays no BYE
// matches, an odd group just sits one participant out per round.
func compactSeeding(seeding []*int64) []*int64 {
	out := make([]*int64, 0, len(seeding))
	for _, id := range seeding {
		if id != nil {
			out = append(out, id)
		}
	}
	return out
}

func scheduleGroup(b *treeBuilder, group *models.Group, members []*int64, mode models.RoundRobinMode, bestOf int) {
	players := make([]*int64, len(members))
	copy(players, members)
	if len(players)%2 != 0 {
		players = append(players, nil) // rotating bye
	}
	n := len(players)
	roundsPerLeg := n - 1

	legs := 1
	if mode == models.RoundRobinDouble {
		legs = 2
	}

	roundNumber := 0
	for leg := 0; leg < legs; leg++ {
		rotation := make([]*int64, n)
		copy(rotation, players)

		for r := 0; r < roundsPerLeg; r++ {
			roundNumber++
			round := b.addRound(group, roundNumber, bestOf)
			matchNumber := 0
			for i := 0; i < n/2; i++ {
				p1, p2 := rotation[i], rotation[n-1-i]
				if p1 == nil || p2 == nil {
					continue // bye sits this round out
				}
				if leg == 1 {
					p1, p2 = p2, p1 // swap home and away on the second leg
				}
				matchNumber++
				b.addMatch(round, matchNumber, slotFor(p1), slotFor(p2))
			}

			// Rotate everyone but the first player one step clockwise.
			last := rotation[n-1]
			copy(rotation[2:], rotation[1:n-1])
			rotation[1] = last
		}
	}
}

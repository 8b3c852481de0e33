package brackets

import (
	"github.com/inkzone/bracket-engine/models"
)

// buildDoubleElimination builds a winners bracket, a losers bracket fed by
// the winners rounds per the fixed mapping (losers round 1 takes winners
// round 1 losers; every even losers round merges the previous losers round's
// winners with the next winners round's losers; odd rounds pair losers
// winners among themselves), and an optional grand final group.
//
// With skip_first_round the winners bracket starts at half size: even slots
// of the placed seeding enter winners round 1 and odd slots drop straight
// into losers round 1. That variant requires a full power-of-two seeding.
func buildDoubleElimination(stage *models.Stage, seeding []*int64) (*StageTree, error) {
	bestOf, err := eliminationBestOf(stage.Settings)
	if err != nil {
		return nil, err
	}

	size, err := bracketSize(stage.Settings, len(seeding))
	if err != nil {
		return nil, err
	}
	if size < 4 {
		return nil, validationErrorf("size", "double elimination needs at least 4 slots, got %d", size)
	}
	// Slots alone are not enough: fewer than 4 real entrants cannot populate
	// a losers bracket.
	if countParticipants(seeding) < 4 {
		return nil, validationErrorf("size", "double elimination needs at least 4 participants, got %d", countParticipants(seeding))
	}

	switch stage.Settings.GrandFinal {
	case models.GrandFinalNone, models.GrandFinalSimple, models.GrandFinalDouble, "":
	default:
		return nil, validationErrorf("grand_final", "unsupported grand final type %q", stage.Settings.GrandFinal)
	}

	skip := stage.Settings.SkipFirstRound
	if skip && countParticipants(seeding) != size {
		return nil, validationErrorf("skip_first_round", "requires a full power-of-two seeding (%d slots, %d entries)", size, countParticipants(seeding))
	}

	placed, err := placeSeeds(seeding, size, effectiveOrdering(stage.Settings), stage.Settings.ManualOrdering)
	if err != nil {
		return nil, err
	}

	b := newTreeBuilder(stage)
	winners := b.addGroup(1, models.GroupWinners)
	losers := b.addGroup(2, models.GroupLosers)

	totalRounds := log2(size)

	// Winners bracket. When the first round is skipped, even slots form a
	// half-size round one and the round numbers shift down by one.
	var wbRounds [][]*models.Match
	var wbFirst []*int64
	if skip {
		wbFirst = everyOther(placed, 0)
	} else {
		wbFirst = placed
	}
	prev := buildFirstRound(b, winners, wbFirst, bestOf)
	wbRounds = append(wbRounds, prev)
	wbRoundCount := totalRounds
	if skip {
		wbRoundCount--
	}
	for r := 2; r <= wbRoundCount; r++ {
		round := b.addRound(winners, r, bestOf)
		var current []*models.Match
		for i := 0; i < len(prev)/2; i++ {
			m := b.addMatch(round, i+1, tbd(), tbd())
			link(prev[2*i], m, models.SideOne)
			link(prev[2*i+1], m, models.SideTwo)
			current = append(current, m)
		}
		wbRounds = append(wbRounds, current)
		prev = current
	}

	// Losers bracket: 2*(totalRounds-1) rounds regardless of the skip, since
	// skipping only replaces winners round one losers with direct entrants.
	lbRoundCount := 2 * (totalRounds - 1)
	var lbPrev []*models.Match
	for r := 1; r <= lbRoundCount; r++ {
		count := size / 4 >> ((r - 1) / 2)
		round := b.addRound(losers, r, bestOf)
		current := make([]*models.Match, 0, count)

		switch {
		case r == 1 && skip:
			oddSlots := everyOther(placed, 1)
			for i := 0; i < count; i++ {
				m := b.addMatch(round, i+1, slotFor(oddSlots[2*i]), slotFor(oddSlots[2*i+1]))
				current = append(current, m)
			}
		case r == 1:
			for i := 0; i < count; i++ {
				m := b.addMatch(round, i+1, tbd(), tbd())
				linkLoser(wbRounds[0][2*i], m, models.SideOne)
				linkLoser(wbRounds[0][2*i+1], m, models.SideTwo)
				current = append(current, m)
			}
		case r%2 == 0:
			// Major round: previous losers round winners meet the losers
			// dropping from the winners bracket.
			wbIdx := r / 2 // zero-based winners round feeding this one
			if skip {
				wbIdx--
			}
			for i := 0; i < count; i++ {
				m := b.addMatch(round, i+1, tbd(), tbd())
				link(lbPrev[i], m, models.SideOne)
				linkLoser(wbRounds[wbIdx][i], m, models.SideTwo)
				current = append(current, m)
			}
		default:
			// Minor round: previous round winners pair up.
			for i := 0; i < count; i++ {
				m := b.addMatch(round, i+1, tbd(), tbd())
				link(lbPrev[2*i], m, models.SideOne)
				link(lbPrev[2*i+1], m, models.SideTwo)
				current = append(current, m)
			}
		}
		lbPrev = current
	}

	if gf := stage.Settings.GrandFinal; gf == models.GrandFinalSimple || gf == models.GrandFinalDouble {
		final := b.addGroup(3, models.GroupFinal)
		round1 := b.addRound(final, 1, bestOf)
		gf1 := b.addMatch(round1, 1, tbd(), tbd())
		link(wbRounds[len(wbRounds)-1][0], gf1, models.SideOne)
		link(lbPrev[0], gf1, models.SideTwo)

		if gf == models.GrandFinalDouble {
			round2 := b.addRound(final, 2, bestOf)
			gf2 := b.addMatch(round2, 1, tbd(), tbd())
			// Played only if the losers bracket champion takes the first
			// grand final; the advancer archives it otherwise.
			link(gf1, gf2, models.SideOne)
			linkLoser(gf1, gf2, models.SideTwo)
		}
	}

	settle(b.tree)
	return b.tree, nil
}

func countParticipants(seeding []*int64) int {
	n := 0
	for _, id := range seeding {
		if id != nil {
			n++
		}
	}
	return n
}

func everyOther(placed []*int64, offset int) []*int64 {
	out := make([]*int64, 0, len(placed)/2)
	for i := offset; i < len(placed); i += 2 {
		out = append(out, placed[i])
	}
	return out
}

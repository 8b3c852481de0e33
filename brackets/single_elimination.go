package brackets

import (
	"github.com/inkzone/bracket-engine/models"
)

// buildSingleElimination builds one winners tree, optionally with a
// consolation final between the two semifinal losers. Round one is populated
// from the placed seeding; every later match starts Locked with both slots to
// be determined.
func buildSingleElimination(stage *models.Stage, seeding []*int64) (*StageTree, error) {
	bestOf, err := eliminationBestOf(stage.Settings)
	if err != nil {
		return nil, err
	}

	size, err := bracketSize(stage.Settings, len(seeding))
	if err != nil {
		return nil, err
	}

	placed, err := placeSeeds(seeding, size, effectiveOrdering(stage.Settings), stage.Settings.ManualOrdering)
	if err != nil {
		return nil, err
	}

	b := newTreeBuilder(stage)
	bracket := b.addGroup(1, models.GroupSingleBracket)

	rounds := log2(size)
	prev := buildFirstRound(b, bracket, placed, bestOf)
	var semifinals []*models.Match
	for r := 2; r <= rounds; r++ {
		round := b.addRound(bracket, r, bestOf)
		var current []*models.Match
		for i := 0; i < len(prev)/2; i++ {
			m := b.addMatch(round, i+1, tbd(), tbd())
			link(prev[2*i], m, models.SideOne)
			link(prev[2*i+1], m, models.SideTwo)
			current = append(current, m)
		}
		if r == rounds-1 {
			semifinals = current
		}
		prev = current
	}
	if rounds == 2 {
		// The first round is the semifinal round in a 4-slot bracket.
		semifinals = b.tree.MatchesOfRound(b.tree.Rounds[0].ID)
	}

	if stage.Settings.ConsolationFinal {
		if len(semifinals) != 2 {
			return nil, validationErrorf("consolation_final", "bracket of size %d has no semifinal round", size)
		}
		consolation := b.addGroup(2, models.GroupConsolation)
		round := b.addRound(consolation, 1, bestOf)
		m := b.addMatch(round, 1, tbd(), tbd())
		linkLoser(semifinals[0], m, models.SideOne)
		linkLoser(semifinals[1], m, models.SideTwo)
	}

	settle(b.tree)
	return b.tree, nil
}

// buildFirstRound creates the matches of round one from the placed slot list.
func buildFirstRound(b *treeBuilder, group *models.Group, placed []*int64, bestOf int) []*models.Match {
	round := b.addRound(group, 1, bestOf)
	matches := make([]*models.Match, 0, len(placed)/2)
	for i := 0; i < len(placed)/2; i++ {
		m := b.addMatch(round, i+1, slotFor(placed[2*i]), slotFor(placed[2*i+1]))
		matches = append(matches, m)
	}
	return matches
}

func bracketSize(s models.StageSettings, participantCount int) (int, error) {
	size := nextPowerOfTwo(participantCount)
	if s.Size != 0 {
		if !isPowerOfTwo(s.Size) {
			return 0, validationErrorf("size", "must be a power of two, got %d", s.Size)
		}
		if s.Size < participantCount {
			return 0, validationErrorf("size", "%d is smaller than the %d-entry seeding", s.Size, participantCount)
		}
		size = s.Size
	}
	if size < 2 {
		size = 2
	}
	return size, nil
}

func log2(n int) int {
	r := 0
	for 1<<r < n {
		r++
	}
	return r
}

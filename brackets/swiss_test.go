package brackets

import (
	"testing"

	"github.com/inkzone/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPairer returns a fixed pairing and records what it was shown.
type scriptedPairer struct {
	pairs      [][2]int64
	seenPlayed [][2]int64
}

func (p *scriptedPairer) Pair(participants []int64, played [][2]int64) ([][2]int64, error) {
	p.seenPlayed = played
	return p.pairs, nil
}

func TestSwissSkeleton(t *testing.T) {
	tree := buildTestStage(t, models.StageSwiss,
		models.StageSettings{BestOf: 1}, seeding(8))

	group := tree.GroupByNumber(1)
	require.NotNil(t, group)
	assert.Equal(t, models.GroupSwiss, group.Type)
	// ceil(log2(8)) rounds of 4 slots each, nothing paired yet.
	assert.Equal(t, 3, tree.MaxRoundNumber(group.ID))
	require.Len(t, tree.Matches, 12)
	for _, m := range tree.Matches {
		assert.Equal(t, models.StatusLocked, m.Status)
		require.NotNil(t, m.Opponent1)
		assert.Nil(t, m.Opponent1.ID)
	}
}

func TestSwissUnevenGroups(t *testing.T) {
	tree := buildTestStage(t, models.StageSwiss,
		models.StageSettings{BestOf: 1, SwissGroupCount: 2, SwissRoundCount: 3}, seeding(9))

	// 9 participants over 2 groups: a group of 5 and a group of 4.
	round1 := tree.RoundsOfGroup(tree.GroupByNumber(1).ID)[0]
	assert.Len(t, tree.MatchesOfRound(round1.ID), 2)
	round1 = tree.RoundsOfGroup(tree.GroupByNumber(2).ID)[0]
	assert.Len(t, tree.MatchesOfRound(round1.ID), 2)
}

// SwissGroups recovers the membership blocks the builder sized the groups
// by, so pairing a multi-group stage hands each group only its own members.
func TestSwissGroupsPairing(t *testing.T) {
	tree := buildTestStage(t, models.StageSwiss,
		models.StageSettings{BestOf: 1, SwissGroupCount: 2, SwissRoundCount: 2}, seeding(9))

	groups := SwissGroups([]int64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 2)
	require.Len(t, groups, 2)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, groups[0])
	assert.Equal(t, []int64{6, 7, 8, 9}, groups[1])

	// Each block matches its group's slot count, so pairing round 1 of both
	// groups goes through.
	for g, pairs := range map[int][][2]int64{
		1: {{1, 3}, {2, 4}},
		2: {{6, 8}, {7, 9}},
	} {
		matches, err := PairSwissRound(tree, g, groups[g-1], &scriptedPairer{pairs: pairs})
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	}

	// Handing a group the whole field overflows its round.
	tree2 := buildTestStage(t, models.StageSwiss,
		models.StageSettings{BestOf: 1, SwissGroupCount: 2, SwissRoundCount: 2}, seeding(8))
	pairer := &scriptedPairer{pairs: [][2]int64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}}
	_, err := PairSwissRound(tree2, 1, []int64{1, 2, 3, 4, 5, 6, 7, 8}, pairer)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pairs", verr.Field)
}

func TestSwissPairingAndGating(t *testing.T) {
	tree := buildTestStage(t, models.StageSwiss,
		models.StageSettings{BestOf: 1, SwissRoundCount: 2}, seeding(4))
	participants := []int64{1, 2, 3, 4}

	pairer := &scriptedPairer{pairs: [][2]int64{{1, 2}, {3, 4}}}
	matches, err := PairSwissRound(tree, 1, participants, pairer)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Empty(t, pairer.seenPlayed)
	for _, m := range matches {
		assert.Equal(t, models.StatusReady, m.Status)
	}

	// Round 1 is open, round 2 cannot be paired yet.
	_, err = PairSwissRound(tree, 1, participants, pairer)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)

	for _, m := range matches {
		_, err := ReportResult(tree, m.ID, []models.GameResult{{WinnerSide: models.SideOne}})
		require.NoError(t, err)
	}

	pairer = &scriptedPairer{pairs: [][2]int64{{1, 3}, {2, 4}}}
	_, err = PairSwissRound(tree, 1, participants, pairer)
	require.NoError(t, err)
	// The pairer saw every pairing already played.
	assert.ElementsMatch(t, [][2]int64{{1, 2}, {3, 4}}, pairer.seenPlayed)

	second := matchAt(t, tree, 1, 2, 1)
	require.NotNil(t, second.Opponent1.ID)
	assert.Equal(t, int64(1), *second.Opponent1.ID)
	assert.Equal(t, int64(3), *second.Opponent2.ID)

	for _, n := range []int{1, 2} {
		m := matchAt(t, tree, 1, 2, n)
		_, err := ReportResult(tree, m.ID, []models.GameResult{{WinnerSide: models.SideTwo}})
		require.NoError(t, err)
	}

	// No rounds left to pair.
	_, err = PairSwissRound(tree, 1, participants, pairer)
	require.ErrorAs(t, err, &cerr)
}

func TestSwissPairerOverflow(t *testing.T) {
	tree := buildTestStage(t, models.StageSwiss,
		models.StageSettings{BestOf: 1, SwissRoundCount: 1}, seeding(4))

	pairer := &scriptedPairer{pairs: [][2]int64{{1, 2}, {3, 4}, {1, 3}}}
	_, err := PairSwissRound(tree, 1, []int64{1, 2, 3, 4}, pairer)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pairs", verr.Field)
}

func TestSwissUnknownGroup(t *testing.T) {
	tree := buildTestStage(t, models.StageSwiss,
		models.StageSettings{BestOf: 1}, seeding(4))

	var nerr *NotFoundError
	_, err := PairSwissRound(tree, 9, []int64{1, 2}, &scriptedPairer{})
	require.ErrorAs(t, err, &nerr)
}

package brackets

import (
	"testing"

	"github.com/inkzone/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairOf(m *models.Match) [2]int64 {
	return [2]int64{*m.Opponent1.ID, *m.Opponent2.ID}
}

func TestRoundRobinSchedule(t *testing.T) {
	tree := buildTestStage(t, models.StageRoundRobin,
		models.StageSettings{BestOf: 1}, seeding(4))

	group := tree.GroupByNumber(1)
	require.NotNil(t, group)
	assert.Equal(t, models.GroupRoundRobin, group.Type)
	assert.Equal(t, 3, tree.MaxRoundNumber(group.ID))
	require.Len(t, tree.Matches, 6)

	// Circle method with player 1 fixed.
	assert.Equal(t, [2]int64{1, 4}, pairOf(matchAt(t, tree, 1, 1, 1)))
	assert.Equal(t, [2]int64{2, 3}, pairOf(matchAt(t, tree, 1, 1, 2)))
	assert.Equal(t, [2]int64{1, 3}, pairOf(matchAt(t, tree, 1, 2, 1)))
	assert.Equal(t, [2]int64{4, 2}, pairOf(matchAt(t, tree, 1, 2, 2)))
	assert.Equal(t, [2]int64{1, 2}, pairOf(matchAt(t, tree, 1, 3, 1)))
	assert.Equal(t, [2]int64{3, 4}, pairOf(matchAt(t, tree, 1, 3, 2)))

	// Everything is playable from the start.
	for _, m := range tree.Matches {
		assert.Equal(t, models.StatusReady, m.Status)
	}
}

func TestRoundRobinOddGroupRotatingBye(t *testing.T) {
	tree := buildTestStage(t, models.StageRoundRobin,
		models.StageSettings{BestOf: 1}, seeding(5))

	group := tree.GroupByNumber(1)
	assert.Equal(t, 5, tree.MaxRoundNumber(group.ID))
	// 5 choose 2 pairings, two per round, no BYE matches materialized.
	assert.Len(t, tree.Matches, 10)

	seen := make(map[int64]int)
	for _, m := range tree.Matches {
		require.NotNil(t, m.Opponent1)
		require.NotNil(t, m.Opponent2)
		seen[*m.Opponent1.ID]++
		seen[*m.Opponent2.ID]++
	}
	for id := int64(1); id <= 5; id++ {
		assert.Equal(t, 4, seen[id], "participant %d match count", id)
	}
}

func TestRoundRobinDoubleLeg(t *testing.T) {
	tree := buildTestStage(t, models.StageRoundRobin,
		models.StageSettings{BestOf: 1, RoundRobinMode: models.RoundRobinDouble}, seeding(4))

	group := tree.GroupByNumber(1)
	assert.Equal(t, 6, tree.MaxRoundNumber(group.ID))
	assert.Len(t, tree.Matches, 12)

	// The second leg replays round 1 with home and away swapped.
	assert.Equal(t, [2]int64{1, 4}, pairOf(matchAt(t, tree, 1, 1, 1)))
	assert.Equal(t, [2]int64{4, 1}, pairOf(matchAt(t, tree, 1, 4, 1)))
	assert.Equal(t, [2]int64{3, 2}, pairOf(matchAt(t, tree, 1, 4, 2)))
}

func TestRoundRobinGroups(t *testing.T) {
	tree := buildTestStage(t, models.StageRoundRobin,
		models.StageSettings{BestOf: 1, GroupCount: 2}, seeding(8))

	require.NotNil(t, tree.GroupByNumber(1))
	require.NotNil(t, tree.GroupByNumber(2))
	// 2 groups of 4, 3 rounds of 2 matches each.
	assert.Len(t, tree.Matches, 12)

	// Snake split puts seeds 1 and 4 in the first group.
	m := matchAt(t, tree, 1, 1, 1)
	assert.Equal(t, [2]int64{1, 8}, pairOf(m))
}

func TestRoundRobinRejectsBadInput(t *testing.T) {
	var verr *ValidationError

	_, err := BuildStage(&models.Stage{
		Type:     models.StageRoundRobin,
		Settings: models.StageSettings{GroupCount: 4},
	}, seeding(6))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "group_count", verr.Field)

	_, err = BuildStage(&models.Stage{
		Type:     models.StageRoundRobin,
		Settings: models.StageSettings{RoundRobinMode: "triple"},
	}, seeding(4))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "round_robin_mode", verr.Field)
}

func TestRoundRobinAllowsDraws(t *testing.T) {
	tree := buildTestStage(t, models.StageRoundRobin,
		models.StageSettings{BestOf: 2}, seeding(4))

	m := matchAt(t, tree, 1, 1, 1)
	out, err := ReportResult(tree, m.ID, []models.GameResult{
		{WinnerSide: models.SideOne},
		{WinnerSide: models.SideTwo},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, out.Match.Status)
	assert.Equal(t, models.ResultDraw, out.Match.Opponent1.Result)
	assert.Equal(t, models.ResultDraw, out.Match.Opponent2.Result)
	assert.Nil(t, out.Match.Winner())
}

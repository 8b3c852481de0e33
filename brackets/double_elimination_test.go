package brackets

import (
	"testing"

	"github.com/inkzone/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoubleEliminationStructure(t *testing.T) {
	tree := buildTestStage(t, models.StageDoubleElimination,
		models.StageSettings{BestOf: 1, GrandFinal: models.GrandFinalDouble}, seeding(8))

	winners := tree.GroupByNumber(1)
	losers := tree.GroupByNumber(2)
	final := tree.GroupByNumber(3)
	require.NotNil(t, winners)
	require.NotNil(t, losers)
	require.NotNil(t, final)
	assert.Equal(t, models.GroupWinners, winners.Type)
	assert.Equal(t, models.GroupLosers, losers.Type)
	assert.Equal(t, models.GroupFinal, final.Type)

	assert.Equal(t, 3, tree.MaxRoundNumber(winners.ID))
	assert.Equal(t, 4, tree.MaxRoundNumber(losers.ID))
	assert.Equal(t, 2, tree.MaxRoundNumber(final.ID))

	// Losers rounds shrink as 2, 2, 1, 1 for a bracket of 8.
	for r, want := range map[int]int{1: 2, 2: 2, 3: 1, 4: 1} {
		count := 0
		for _, round := range tree.RoundsOfGroup(losers.ID) {
			if round.Number == r {
				count = len(tree.MatchesOfRound(round.ID))
			}
		}
		assert.Equal(t, want, count, "losers round %d", r)
	}

	assert.Len(t, tree.Matches, 7+6+2)
}

func TestDoubleEliminationRejectsBadInput(t *testing.T) {
	var verr *ValidationError

	_, err := BuildStage(&models.Stage{Type: models.StageDoubleElimination}, seeding(3))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "size", verr.Field)

	_, err = BuildStage(&models.Stage{
		Type:     models.StageDoubleElimination,
		Settings: models.StageSettings{GrandFinal: "triple"},
	}, seeding(4))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "grand_final", verr.Field)

	_, err = BuildStage(&models.Stage{
		Type:     models.StageDoubleElimination,
		Settings: models.StageSettings{SkipFirstRound: true},
	}, seeding(6))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "skip_first_round", verr.Field)
}

// Four participants, best-of-1, simple grand final: losers drop into the
// right slots and the grand final fills from both brackets.
func TestDoubleEliminationAdvancement(t *testing.T) {
	tree := buildTestStage(t, models.StageDoubleElimination,
		models.StageSettings{BestOf: 1, GrandFinal: models.GrandFinalSimple}, seeding(4))

	wb1 := matchAt(t, tree, 1, 1, 1) // 1 vs 4
	wb2 := matchAt(t, tree, 1, 1, 2) // 2 vs 3
	wbFinal := matchAt(t, tree, 1, 2, 1)
	lb1 := matchAt(t, tree, 2, 1, 1)
	lb2 := matchAt(t, tree, 2, 2, 1)
	gf := matchAt(t, tree, 3, 1, 1)

	_, err := ReportResult(tree, wb1.ID, []models.GameResult{{WinnerSide: models.SideOne}})
	require.NoError(t, err)
	require.NotNil(t, lb1.Opponent1.ID)
	assert.Equal(t, int64(4), *lb1.Opponent1.ID)
	assert.Equal(t, models.StatusWaiting, lb1.Status)

	_, err = ReportResult(tree, wb2.ID, []models.GameResult{{WinnerSide: models.SideTwo}})
	require.NoError(t, err)
	require.NotNil(t, lb1.Opponent2.ID)
	assert.Equal(t, int64(2), *lb1.Opponent2.ID)
	assert.Equal(t, models.StatusReady, lb1.Status)
	assert.Equal(t, models.StatusReady, wbFinal.Status)

	sweep2 := func(m *models.Match, winner int64) {
		t.Helper()
		var side models.Side = models.SideOne
		if *m.Opponent2.ID == winner {
			side = models.SideTwo
		}
		_, err := ReportResult(tree, m.ID, []models.GameResult{{WinnerSide: side}})
		require.NoError(t, err)
	}

	sweep2(lb1, 2)
	require.NotNil(t, lb2.Opponent1.ID)
	assert.Equal(t, int64(2), *lb2.Opponent1.ID)

	sweep2(wbFinal, 1)
	// Winners champion goes straight to the grand final; the loser falls to
	// the losers final.
	require.NotNil(t, gf.Opponent1.ID)
	assert.Equal(t, int64(1), *gf.Opponent1.ID)
	require.NotNil(t, lb2.Opponent2.ID)
	assert.Equal(t, int64(3), *lb2.Opponent2.ID)

	sweep2(lb2, 2)
	assert.Equal(t, models.StatusReady, gf.Status)
	require.NotNil(t, gf.Opponent2.ID)
	assert.Equal(t, int64(2), *gf.Opponent2.ID)

	sweep2(gf, 1)
	assert.Equal(t, models.StatusCompleted, gf.Status)
	require.NotNil(t, gf.Winner())
	assert.Equal(t, int64(1), *gf.Winner())
}

// Five participants in an 8-slot bracket: three winners round 1 BYEs turn
// into losers bracket BYEs, including a double BYE that passes straight
// through losers round 1.
func TestDoubleEliminationByeCascade(t *testing.T) {
	tree := buildTestStage(t, models.StageDoubleElimination,
		models.StageSettings{BestOf: 3, BalanceByes: true, GrandFinal: models.GrandFinalSimple}, seeding(5))

	assert.Equal(t, models.StatusCompleted, matchAt(t, tree, 1, 1, 1).Status) // 1 vs BYE
	assert.Equal(t, models.StatusReady, matchAt(t, tree, 1, 1, 2).Status)     // 4 vs 5
	assert.Equal(t, models.StatusCompleted, matchAt(t, tree, 1, 1, 3).Status) // 2 vs BYE
	assert.Equal(t, models.StatusCompleted, matchAt(t, tree, 1, 1, 4).Status) // 3 vs BYE

	// Losers round 1 match 1 inherits the BYE that lost winners match 1.
	lb11 := matchAt(t, tree, 2, 1, 1)
	assert.Nil(t, lb11.Opponent1)
	assert.Equal(t, models.StatusWaiting, lb11.Status)

	// Both feeders of losers round 1 match 2 were BYE auto-wins, so both its
	// slots are BYEs and the match is dead on arrival.
	lb12 := matchAt(t, tree, 2, 1, 2)
	assert.Nil(t, lb12.Opponent1)
	assert.Nil(t, lb12.Opponent2)
	assert.Equal(t, models.StatusArchived, lb12.Status)

	// The double BYE propagates: losers round 2 match 2 starts with a BYE slot.
	lb22 := matchAt(t, tree, 2, 2, 2)
	assert.Nil(t, lb22.Opponent1)
	assert.Equal(t, models.StatusWaiting, lb22.Status)

	// Play 4 vs 5; its loser completes losers round 1 match 1 as an auto win.
	sweep(t, tree, matchAt(t, tree, 1, 1, 2), 4)
	require.NotNil(t, lb11.Opponent2.ID)
	assert.Equal(t, int64(5), *lb11.Opponent2.ID)
	assert.Equal(t, models.StatusCompleted, lb11.Status)
	assert.Equal(t, models.ResultWin, lb11.Opponent2.Result)
}

func TestDoubleEliminationGrandFinalReset(t *testing.T) {
	build := func(t *testing.T) (*StageTree, *models.Match, *models.Match) {
		tree := buildTestStage(t, models.StageDoubleElimination,
			models.StageSettings{BestOf: 1, GrandFinal: models.GrandFinalDouble}, seeding(4))
		report := func(id int64, side models.Side) {
			_, err := ReportResult(tree, id, []models.GameResult{{WinnerSide: side}})
			require.NoError(t, err)
		}
		report(matchAt(t, tree, 1, 1, 1).ID, models.SideOne) // 1 beats 4
		report(matchAt(t, tree, 1, 1, 2).ID, models.SideTwo) // 3 beats 2
		report(matchAt(t, tree, 1, 2, 1).ID, models.SideOne) // 1 beats 3
		report(matchAt(t, tree, 2, 1, 1).ID, models.SideTwo) // 2 beats 4
		report(matchAt(t, tree, 2, 2, 1).ID, models.SideOne) // 2 beats 3
		gf1 := matchAt(t, tree, 3, 1, 1)
		gf2 := matchAt(t, tree, 3, 2, 1)
		require.Equal(t, models.StatusReady, gf1.Status)
		return tree, gf1, gf2
	}

	t.Run("winners champion wins, no reset", func(t *testing.T) {
		tree, gf1, gf2 := build(t)
		_, err := ReportResult(tree, gf1.ID, []models.GameResult{{WinnerSide: models.SideOne}})
		require.NoError(t, err)
		assert.Equal(t, models.StatusArchived, gf2.Status)
		assert.Nil(t, gf2.Opponent1.ID)
		assert.Nil(t, gf2.Opponent2.ID)
	})

	t.Run("losers champion wins, reset is played", func(t *testing.T) {
		tree, gf1, gf2 := build(t)
		_, err := ReportResult(tree, gf1.ID, []models.GameResult{{WinnerSide: models.SideTwo}})
		require.NoError(t, err)
		assert.Equal(t, models.StatusReady, gf2.Status)
		require.NotNil(t, gf2.Opponent1.ID)
		require.NotNil(t, gf2.Opponent2.ID)
		assert.Equal(t, int64(2), *gf2.Opponent1.ID)
		assert.Equal(t, int64(1), *gf2.Opponent2.ID)
	})

	t.Run("undo of the opener revives the reset", func(t *testing.T) {
		tree, gf1, gf2 := build(t)
		_, err := ReportResult(tree, gf1.ID, []models.GameResult{{WinnerSide: models.SideOne}})
		require.NoError(t, err)
		require.Equal(t, models.StatusArchived, gf2.Status)

		_, err = UndoResult(tree, gf1.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusReady, gf1.Status)
		assert.Equal(t, models.StatusLocked, gf2.Status)
	})
}

func TestDoubleEliminationSkipFirstRound(t *testing.T) {
	tree := buildTestStage(t, models.StageDoubleElimination,
		models.StageSettings{BestOf: 1, SkipFirstRound: true, GrandFinal: models.GrandFinalSimple}, seeding(8))

	winners := tree.GroupByNumber(1)
	losers := tree.GroupByNumber(2)
	assert.Equal(t, 2, tree.MaxRoundNumber(winners.ID))
	assert.Equal(t, 4, tree.MaxRoundNumber(losers.ID))

	// Even seeding slots start in the winners bracket.
	wb1 := matchAt(t, tree, 1, 1, 1)
	require.NotNil(t, wb1.Opponent1.ID)
	assert.Equal(t, int64(1), *wb1.Opponent1.ID)
	assert.Equal(t, int64(4), *wb1.Opponent2.ID)
	assert.Equal(t, models.StatusReady, wb1.Status)

	// Odd slots go straight into losers round 1, ready to play.
	lb1 := matchAt(t, tree, 2, 1, 1)
	require.NotNil(t, lb1.Opponent1.ID)
	assert.Equal(t, int64(8), *lb1.Opponent1.ID)
	assert.Equal(t, int64(5), *lb1.Opponent2.ID)
	assert.Equal(t, models.StatusReady, lb1.Status)

	// Losers round 2 now consumes winners round 1 losers.
	lb21 := matchAt(t, tree, 2, 2, 1)
	_, err := ReportResult(tree, wb1.ID, []models.GameResult{{WinnerSide: models.SideOne}})
	require.NoError(t, err)
	require.NotNil(t, lb21.Opponent2.ID)
	assert.Equal(t, int64(4), *lb21.Opponent2.ID)
}

package brackets

import (
	"testing"

	"github.com/inkzone/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchIsOver(t *testing.T) {
	assert.True(t, MatchIsOver(5, []int{3, 1}))
	assert.True(t, MatchIsOver(5, []int{0, 3}))
	assert.False(t, MatchIsOver(5, []int{2, 2}))
	assert.False(t, MatchIsOver(5, []int{2, 1}))
	assert.True(t, MatchIsOver(1, []int{1, 0}))
	assert.False(t, MatchIsOver(3, []int{1, 1}))
	assert.False(t, MatchIsOver(5, nil))
	assert.False(t, MatchIsOver(5, []int{3}))
}

func TestStartMatch(t *testing.T) {
	tree := buildTestStage(t, models.StageSingleElimination,
		models.StageSettings{BestOf: 3}, seeding(4))

	semi := matchAt(t, tree, 1, 1, 1)
	final := matchAt(t, tree, 1, 2, 1)

	m, err := StartMatch(tree, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, m.Status)

	// Only ready matches can start.
	var cerr *ConflictError
	_, err = StartMatch(tree, semi.ID)
	require.ErrorAs(t, err, &cerr)
	_, err = StartMatch(tree, final.ID)
	require.ErrorAs(t, err, &cerr)

	var nerr *NotFoundError
	_, err = StartMatch(tree, 999)
	require.ErrorAs(t, err, &nerr)
}

func TestReportResultValidation(t *testing.T) {
	tree := buildTestStage(t, models.StageSingleElimination,
		models.StageSettings{BestOf: 3, BalanceByes: true}, seeding(6))

	bye := matchAt(t, tree, 1, 1, 1)    // 1 vs BYE
	open := matchAt(t, tree, 1, 1, 2)   // 4 vs 5
	locked := matchAt(t, tree, 1, 3, 1) // final

	var cerr *ConflictError
	var verr *ValidationError

	_, err := ReportResult(tree, bye.ID, []models.GameResult{{WinnerSide: models.SideOne}})
	require.ErrorAs(t, err, &cerr)

	_, err = ReportResult(tree, locked.ID, []models.GameResult{{WinnerSide: models.SideOne}})
	require.ErrorAs(t, err, &cerr)

	_, err = ReportResult(tree, open.ID, nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "games", verr.Field)

	_, err = ReportResult(tree, open.ID, []models.GameResult{
		{WinnerSide: models.SideOne}, {WinnerSide: models.SideOne},
		{WinnerSide: models.SideOne}, {WinnerSide: models.SideOne},
	})
	require.ErrorAs(t, err, &verr)

	_, err = ReportResult(tree, open.ID, []models.GameResult{{WinnerSide: 3}})
	require.ErrorAs(t, err, &verr)

	var nerr *NotFoundError
	_, err = ReportResult(tree, 999, []models.GameResult{{WinnerSide: models.SideOne}})
	require.ErrorAs(t, err, &nerr)
}

func TestReportResultPartialSeries(t *testing.T) {
	tree := buildTestStage(t, models.StageSingleElimination,
		models.StageSettings{BestOf: 3}, seeding(4))
	m := matchAt(t, tree, 1, 1, 1)

	out, err := ReportResult(tree, m.ID, []models.GameResult{{WinnerSide: models.SideOne}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, out.Match.Status)
	require.NotNil(t, m.Opponent1.Score)
	assert.Equal(t, 1, *m.Opponent1.Score)
	assert.Equal(t, 0, *m.Opponent2.Score)
	assert.Equal(t, models.ResultNone, m.Opponent1.Result)

	// Reporting without starting first is fine; games decide the state.
	out, err = ReportResult(tree, m.ID, []models.GameResult{
		{WinnerSide: models.SideOne},
		{WinnerSide: models.SideTwo},
		{WinnerSide: models.SideOne},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, out.Match.Status)
	assert.Equal(t, 2, *m.Opponent1.Score)
	assert.Equal(t, 1, *m.Opponent2.Score)
}

// Re-reporting a completed match replaces the game list wholesale and moves
// the propagated winner, as long as nothing downstream has started.
func TestReportResultCorrection(t *testing.T) {
	tree := buildTestStage(t, models.StageSingleElimination,
		models.StageSettings{BestOf: 3}, seeding(4))
	semi := matchAt(t, tree, 1, 1, 1) // 1 vs 4
	final := matchAt(t, tree, 1, 2, 1)

	sweep(t, tree, semi, 1)
	require.NotNil(t, final.Opponent1.ID)
	assert.Equal(t, int64(1), *final.Opponent1.ID)

	_, err := ReportResult(tree, semi.ID, []models.GameResult{
		{WinnerSide: models.SideTwo},
		{WinnerSide: models.SideTwo},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, semi.Status)
	require.NotNil(t, final.Opponent1.ID)
	assert.Equal(t, int64(4), *final.Opponent1.ID)
}

func TestUndoResult(t *testing.T) {
	tree := buildTestStage(t, models.StageSingleElimination,
		models.StageSettings{BestOf: 3}, seeding(4))
	semi := matchAt(t, tree, 1, 1, 1)
	final := matchAt(t, tree, 1, 2, 1)

	var cerr *ConflictError
	_, err := UndoResult(tree, semi.ID)
	require.ErrorAs(t, err, &cerr, "nothing to undo yet")

	sweep(t, tree, semi, 1)
	require.Equal(t, models.StatusCompleted, semi.Status)
	require.NotNil(t, final.Opponent1.ID)

	// Undoing the decisive game reopens the match and pulls the winner back
	// out of the final.
	out, err := UndoResult(tree, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, out.Match.Status)
	assert.Len(t, semi.Games, 1)
	assert.Nil(t, final.Opponent1.ID)
	assert.Equal(t, models.StatusLocked, final.Status)

	// Undoing the last game restores the pristine ready state.
	_, err = UndoResult(tree, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, semi.Status)
	assert.Empty(t, semi.Games)
	assert.Nil(t, semi.Opponent1.Score)
	assert.Nil(t, semi.Opponent2.Score)
	assert.Equal(t, models.ResultNone, semi.Opponent1.Result)
	assert.Nil(t, semi.LastGameFinishedAt)
}

func TestUndoBlockedByDownstreamPlay(t *testing.T) {
	tree := buildTestStage(t, models.StageSingleElimination,
		models.StageSettings{BestOf: 3}, seeding(4))
	semi1 := matchAt(t, tree, 1, 1, 1)
	semi2 := matchAt(t, tree, 1, 1, 2)
	final := matchAt(t, tree, 1, 2, 1)

	sweep(t, tree, semi1, 1)
	sweep(t, tree, semi2, 2)
	require.Equal(t, models.StatusReady, final.Status)

	// The final merely received its participants; the semis stay correctable.
	_, err := UndoResult(tree, semi1.ID)
	require.NoError(t, err)
	sweep(t, tree, semi1, 1)

	// One game into the final, its feeders are frozen.
	_, err = ReportResult(tree, final.ID, []models.GameResult{{WinnerSide: models.SideOne}})
	require.NoError(t, err)

	var cerr *ConflictError
	_, err = UndoResult(tree, semi1.ID)
	require.ErrorAs(t, err, &cerr)
	_, err = ReportResult(tree, semi2.ID, []models.GameResult{
		{WinnerSide: models.SideOne},
		{WinnerSide: models.SideOne},
	})
	require.ErrorAs(t, err, &cerr)
}

func TestReportForfeit(t *testing.T) {
	tree := buildTestStage(t, models.StageSingleElimination,
		models.StageSettings{BestOf: 3}, seeding(4))
	semi := matchAt(t, tree, 1, 1, 1) // 1 vs 4
	final := matchAt(t, tree, 1, 2, 1)

	var verr *ValidationError
	_, err := ReportForfeit(tree, semi.ID, 5)
	require.ErrorAs(t, err, &verr)

	out, err := ReportForfeit(tree, semi.ID, models.SideOne)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, out.Match.Status)
	assert.True(t, semi.Opponent1.Forfeit)
	assert.Equal(t, models.ResultLoss, semi.Opponent1.Result)
	assert.Equal(t, models.ResultWin, semi.Opponent2.Result)
	require.NotNil(t, final.Opponent1.ID)
	assert.Equal(t, int64(4), *final.Opponent1.ID)

	// A forfeit is undoable like any other result.
	_, err = UndoResult(tree, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, semi.Status)
	assert.False(t, semi.Opponent1.Forfeit)
	assert.Equal(t, models.ResultNone, semi.Opponent1.Result)
	assert.Nil(t, final.Opponent1.ID)

	// Re-reporting over a forfeit clears the flag too.
	_, err = ReportForfeit(tree, semi.ID, models.SideTwo)
	require.NoError(t, err)
	sweep(t, tree, semi, 4)
	assert.False(t, semi.Opponent2.Forfeit)
	assert.Equal(t, int64(4), *final.Opponent1.ID)
}

// Each operation bumps the version of every touched match exactly once, and
// the outcome lists them in id order.
func TestOutcomeVersioning(t *testing.T) {
	tree := buildTestStage(t, models.StageSingleElimination,
		models.StageSettings{BestOf: 3}, seeding(4))
	semi := matchAt(t, tree, 1, 1, 1)
	final := matchAt(t, tree, 1, 2, 1)
	require.Equal(t, 0, semi.Version)

	out, err := ReportResult(tree, semi.ID, []models.GameResult{
		{WinnerSide: models.SideOne},
		{WinnerSide: models.SideOne},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, semi.Version)
	assert.Equal(t, 1, final.Version)

	require.Len(t, out.Updated, 2)
	assert.Equal(t, semi.ID, out.Updated[0].ID)
	assert.Equal(t, final.ID, out.Updated[1].ID)

	_, err = UndoResult(tree, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, semi.Version)
	assert.Equal(t, 2, final.Version)
}

package brackets

import (
	"testing"
	"time"

	"github.com/inkzone/bracket-engine/models"
	"github.com/stretchr/testify/require"
)

func pid(v int64) *int64 {
	return &v
}

// seeding returns ordered participant ids 1..n.
func seeding(n int) []*int64 {
	out := make([]*int64, n)
	for i := 0; i < n; i++ {
		out[i] = pid(int64(i + 1))
	}
	return out
}

func entrant(id int64, registered time.Time) *models.Participant {
	return &models.Participant{ID: id, CreatedAt: registered}
}

func buildTestStage(t *testing.T, typ models.StageType, settings models.StageSettings, seeds []*int64) *StageTree {
	t.Helper()
	tree, err := BuildStage(&models.Stage{
		ID:       1,
		Name:     "main bracket",
		Type:     typ,
		Number:   1,
		Settings: settings,
	}, seeds)
	require.NoError(t, err)
	return tree
}

// matchAt finds a match by group number, round number and match number.
func matchAt(t *testing.T, tree *StageTree, groupNumber, roundNumber, matchNumber int) *models.Match {
	t.Helper()
	group := tree.GroupByNumber(groupNumber)
	require.NotNil(t, group, "group %d not found", groupNumber)
	for _, r := range tree.RoundsOfGroup(group.ID) {
		if r.Number != roundNumber {
			continue
		}
		for _, m := range tree.MatchesOfRound(r.ID) {
			if m.Number == matchNumber {
				return m
			}
		}
	}
	t.Fatalf("match %d of group %d round %d not found", matchNumber, groupNumber, roundNumber)
	return nil
}

// sweep reports a clean 2-0 so the given participant wins the match.
func sweep(t *testing.T, tree *StageTree, m *models.Match, winnerID int64) {
	t.Helper()
	var side models.Side
	switch {
	case m.Opponent1 != nil && m.Opponent1.ID != nil && *m.Opponent1.ID == winnerID:
		side = models.SideOne
	case m.Opponent2 != nil && m.Opponent2.ID != nil && *m.Opponent2.ID == winnerID:
		side = models.SideTwo
	default:
		t.Fatalf("participant %d is not in match %d", winnerID, m.ID)
	}
	_, err := ReportResult(tree, m.ID, []models.GameResult{
		{WinnerSide: side},
		{WinnerSide: side},
	})
	require.NoError(t, err)
}

package brackets

import (
	"testing"

	"github.com/inkzone/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHistoryOrientation(t *testing.T) {
	mode := "payload"
	mapID := int64(7)

	// Team 50 is stored in the second slot and won the series 3-1; the score
	// must still come out viewed-team first.
	matches := []TeamMatchRow{{
		MatchID:        11,
		Opponent1ID:    pid(40),
		Opponent2ID:    pid(50),
		GroupType:      models.GroupWinners,
		RoundNumber:    4,
		MaxRoundNumber: 4,
	}}
	games := []TeamGameRow{
		{MatchID: 11, Number: 1, WinnerID: pid(50), ModeID: &mode, MapID: &mapID, Players: []GamePlayer{
			{UserID: 100, TeamID: 40}, {UserID: 200, TeamID: 50},
		}},
		{MatchID: 11, Number: 2, WinnerID: pid(40), Players: []GamePlayer{
			{UserID: 100, TeamID: 40}, {UserID: 200, TeamID: 50},
		}},
		{MatchID: 11, Number: 3, WinnerID: pid(50), Players: []GamePlayer{
			{UserID: 101, TeamID: 40}, {UserID: 200, TeamID: 50},
		}},
		{MatchID: 11, Number: 4, WinnerID: pid(50)},
	}

	sets := SetHistory(50, matches, games)
	require.Len(t, sets, 1)
	set := sets[0]

	assert.Equal(t, int64(11), set.MatchID)
	require.NotNil(t, set.OpponentID)
	assert.Equal(t, int64(40), *set.OpponentID)
	assert.Equal(t, [2]int{3, 1}, set.Score)
	assert.Equal(t, "Winners Finals", set.RoundName)

	require.Len(t, set.Games, 4)
	assert.True(t, set.Games[0].Won)
	assert.False(t, set.Games[1].Won)
	assert.Equal(t, &mode, set.Games[0].ModeID)
	assert.Equal(t, &mapID, set.Games[0].MapID)

	// Opponent roster is deduplicated across games.
	assert.Equal(t, []int64{100, 101}, set.OpponentRoster)
}

func TestSetHistoryMultipleMatches(t *testing.T) {
	matches := []TeamMatchRow{
		{MatchID: 1, Opponent1ID: pid(50), Opponent2ID: pid(60), GroupType: models.GroupSingleBracket, RoundNumber: 1, MaxRoundNumber: 2},
		{MatchID: 2, Opponent1ID: pid(50), Opponent2ID: pid(70), GroupType: models.GroupSingleBracket, RoundNumber: 2, MaxRoundNumber: 2},
	}
	games := []TeamGameRow{
		{MatchID: 1, Number: 1, WinnerID: pid(50)},
		{MatchID: 1, Number: 2, WinnerID: pid(50)},
		{MatchID: 2, Number: 1, WinnerID: pid(70)},
		{MatchID: 2, Number: 2, WinnerID: pid(50)},
		{MatchID: 2, Number: 3, WinnerID: pid(70)},
	}

	sets := SetHistory(50, matches, games)
	require.Len(t, sets, 2)
	assert.Equal(t, "Round 1", sets[0].RoundName)
	assert.Equal(t, [2]int{2, 0}, sets[0].Score)
	assert.Equal(t, "Finals", sets[1].RoundName)
	assert.Equal(t, [2]int{1, 2}, sets[1].Score)
	require.NotNil(t, sets[1].OpponentID)
	assert.Equal(t, int64(70), *sets[1].OpponentID)
}

func TestWinCounts(t *testing.T) {
	sets := []PlayedSet{
		{Score: [2]int{2, 0}, Games: []PlayedGame{{Won: true}, {Won: true}}},
		{Score: [2]int{1, 2}, Games: []PlayedGame{{Won: false}, {Won: true}, {Won: false}}},
		{Score: [2]int{2, 1}, Games: []PlayedGame{{Won: true}, {Won: false}, {Won: true}}},
	}

	summary := WinCounts(sets)
	assert.Equal(t, WinTotals{Won: 2, Total: 3, Percentage: 67}, summary.Sets)
	assert.Equal(t, WinTotals{Won: 5, Total: 8, Percentage: 63}, summary.Maps)

	empty := WinCounts(nil)
	assert.Equal(t, 0, empty.Sets.Percentage)
	assert.Equal(t, 0, empty.Maps.Percentage)
}

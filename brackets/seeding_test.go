package brackets

import (
	"testing"
	"time"

	"github.com/inkzone/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBySeed(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entrants := []*models.Participant{
		entrant(10, base.Add(3*time.Hour)),
		entrant(20, base.Add(1*time.Hour)),
		entrant(30, base.Add(2*time.Hour)),
		entrant(40, base),
	}

	t.Run("seeded before unseeded, then registration time", func(t *testing.T) {
		got := OrderBySeed(entrants, []int64{30, 10})

		ids := make([]int64, len(got))
		for i, e := range got {
			ids[i] = e.ID
		}
		// 30 and 10 hold their seed order; 40 and 20 follow by createdAt.
		assert.Equal(t, []int64{30, 10, 40, 20}, ids)
	})

	t.Run("empty seeds degenerates to registration order", func(t *testing.T) {
		got := OrderBySeed(entrants, nil)
		assert.Equal(t, int64(40), got[0].ID)
		assert.Equal(t, int64(20), got[1].ID)
		assert.Equal(t, int64(30), got[2].ID)
		assert.Equal(t, int64(10), got[3].ID)
	})

	t.Run("unknown seed ids are ignored", func(t *testing.T) {
		got := OrderBySeed(entrants, []int64{999, 20})
		assert.Equal(t, int64(20), got[0].ID)
	})

	t.Run("idempotent", func(t *testing.T) {
		seeds := []int64{30, 10}
		once := OrderBySeed(entrants, seeds)
		twice := OrderBySeed(once, seeds)
		assert.Equal(t, once, twice)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		before := entrants[0].ID
		OrderBySeed(entrants, []int64{40})
		assert.Equal(t, before, entrants[0].ID)
	})
}

func TestSeedsFromRegistration(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := func(n int) *int { return &n }
	entrants := []*models.Participant{
		{ID: 10, Seed: seed(3), CreatedAt: base},
		{ID: 20, CreatedAt: base.Add(time.Hour)},
		{ID: 30, Seed: seed(1), CreatedAt: base.Add(2 * time.Hour)},
		{ID: 40, Seed: seed(2), CreatedAt: base.Add(3 * time.Hour)},
	}

	// Lowest seed number first; unseeded entrants are left out of the list.
	assert.Equal(t, []int64{30, 40, 10}, SeedsFromRegistration(entrants))

	// Fed back through OrderBySeed, the unseeded entrant sorts last.
	ordered := OrderBySeed(entrants, SeedsFromRegistration(entrants))
	assert.Equal(t, int64(20), ordered[3].ID)

	assert.Empty(t, SeedsFromRegistration(nil))
}

func TestCrossingOrder(t *testing.T) {
	assert.Equal(t, []int{0, 1}, crossingOrder(2))
	assert.Equal(t, []int{0, 3, 1, 2}, crossingOrder(4))
	assert.Equal(t, []int{0, 7, 3, 4, 1, 6, 2, 5}, crossingOrder(8))
}

func TestPlaceSeeds(t *testing.T) {
	t.Run("crossing pads byes against top seeds", func(t *testing.T) {
		placed, err := placeSeeds(seeding(6), 8, models.OrderingCrossing, nil)
		require.NoError(t, err)

		// Slots beyond the seeding become BYEs; crossing puts them opposite
		// the strongest seeds.
		require.Len(t, placed, 8)
		assert.Equal(t, int64(1), *placed[0])
		assert.Nil(t, placed[1])
		assert.Equal(t, int64(2), *placed[4])
		assert.Nil(t, placed[5])
	})

	t.Run("manual ordering must be a full permutation", func(t *testing.T) {
		_, err := placeSeeds(seeding(4), 4, models.OrderingManual, []int{0, 1})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "manual_ordering", verr.Field)

		_, err = placeSeeds(seeding(4), 4, models.OrderingManual, []int{0, 1, 1, 2})
		require.ErrorAs(t, err, &verr)
	})

	t.Run("manual ordering places verbatim", func(t *testing.T) {
		placed, err := placeSeeds(seeding(4), 4, models.OrderingManual, []int{3, 0, 2, 1})
		require.NoError(t, err)
		assert.Equal(t, int64(4), *placed[0])
		assert.Equal(t, int64(1), *placed[1])
		assert.Equal(t, int64(3), *placed[2])
		assert.Equal(t, int64(2), *placed[3])
	})
}

func TestSplitIntoGroups(t *testing.T) {
	groups, err := splitIntoGroups(seeding(8), 2, models.OrderingSnake)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Snake: 1,4,5,8 vs 2,3,6,7.
	assert.Equal(t, int64(1), *groups[0][0])
	assert.Equal(t, int64(4), *groups[0][1])
	assert.Equal(t, int64(5), *groups[0][2])
	assert.Equal(t, int64(8), *groups[0][3])
	assert.Equal(t, int64(2), *groups[1][0])
	assert.Equal(t, int64(3), *groups[1][1])
}

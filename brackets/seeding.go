package brackets

import (
	"sort"

	"github.com/inkzone/bracket-engine/models"
)

// OrderBySeed sorts entrants into seeding order. Entrants listed in seeds
// come first, ordered by their position in seeds; everyone else follows,
// ordered by registration time. The three comparator branches partition all
// pairs disjointly by presence in seeds, so the relation is a total order and
// safe to hand to a sort directly. Seeds referencing unknown ids are ignored.
func OrderBySeed(entrants []*models.Participant, seeds []int64) []*models.Participant {
	seedIndex := make(map[int64]int, len(seeds))
	for i, id := range seeds {
		if _, ok := seedIndex[id]; !ok {
			seedIndex[id] = i
		}
	}

	out := make([]*models.Participant, len(entrants))
	copy(out, entrants)

	sort.SliceStable(out, func(i, j int) bool {
		si, iSeeded := seedIndex[out[i].ID]
		sj, jSeeded := seedIndex[out[j].ID]
		switch {
		case iSeeded && jSeeded:
			return si < sj
		case iSeeded != jSeeded:
			return iSeeded
		default:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
	})

	return out
}

// SeedsFromRegistration derives an explicit seeds list from the seed numbers
// participants registered with, lowest number first (stable on registration
// order for ties). Participants without a seed number are left to
// OrderBySeed's registration-order fallback.
func SeedsFromRegistration(entrants []*models.Participant) []int64 {
	seeded := make([]*models.Participant, 0, len(entrants))
	for _, p := range entrants {
		if p.Seed != nil {
			seeded = append(seeded, p)
		}
	}
	sort.SliceStable(seeded, func(i, j int) bool {
		return *seeded[i].Seed < *seeded[j].Seed
	})

	out := make([]int64, len(seeded))
	for i, p := range seeded {
		out[i] = p.ID
	}
	return out
}

// crossingOrder returns the seed index occupying each slot of a bracket of
// the given size under standard crossing placement: seed 1 meets the last
// slot, seed 2 the second-to-last, recursively, so top seeds cannot meet
// before the late rounds. Size must be a power of two.
func crossingOrder(size int) []int {
	slots := []int{0}
	for len(slots) < size {
		doubled := len(slots) * 2
		next := make([]int, 0, doubled)
		for _, s := range slots {
			next = append(next, s, doubled-1-s)
		}
		slots = next
	}
	return slots
}

// placeSeeds distributes a seeding (participant ids, nil for BYE) into the
// padded slot list of a first round. The seeding is padded with BYEs up to
// size before placement.
func placeSeeds(seeding []*int64, size int, ordering models.SeedOrdering, manual []int) ([]*int64, error) {
	at := func(idx int) *int64 {
		if idx < len(seeding) {
			return seeding[idx]
		}
		return nil
	}

	placed := make([]*int64, size)
	switch ordering {
	case models.OrderingNatural, "":
		for i := 0; i < size; i++ {
			placed[i] = at(i)
		}
	case models.OrderingCrossing:
		for slot, seedIdx := range crossingOrder(size) {
			placed[slot] = at(seedIdx)
		}
	case models.OrderingManual:
		if len(manual) != size {
			return nil, validationErrorf("manual_ordering", "expected %d positions, got %d", size, len(manual))
		}
		seen := make(map[int]bool, size)
		for slot, seedIdx := range manual {
			if seedIdx < 0 || seedIdx >= size || seen[seedIdx] {
				return nil, validationErrorf("manual_ordering", "position %d is not a permutation of 0..%d", slot, size-1)
			}
			seen[seedIdx] = true
			placed[slot] = at(seedIdx)
		}
	default:
		return nil, validationErrorf("seed_ordering", "unsupported ordering %q", ordering)
	}

	return placed, nil
}

// splitIntoGroups distributes a seeding across groupCount groups, either in
// sequential blocks (natural) or snaking back and forth so the groups stay
// balanced in strength.
func splitIntoGroups(seeding []*int64, groupCount int, ordering models.SeedOrdering) ([][]*int64, error) {
	groups := make([][]*int64, groupCount)

	switch ordering {
	case models.OrderingNatural, "":
		per := (len(seeding) + groupCount - 1) / groupCount
		for i, id := range seeding {
			g := i / per
			groups[g] = append(groups[g], id)
		}
	case models.OrderingSnake:
		for i, id := range seeding {
			lap := i / groupCount
			pos := i % groupCount
			if lap%2 == 1 {
				pos = groupCount - 1 - pos
			}
			groups[pos] = append(groups[pos], id)
		}
	default:
		return nil, validationErrorf("seed_ordering", "unsupported group ordering %q", ordering)
	}

	return groups, nil
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

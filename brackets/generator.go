package brackets

import (
	"github.com/inkzone/bracket-engine/models"
)

// BuildStage generates the full Stage/Group/Round/Match skeleton for the
// given stage settings and seeding. The seeding is an ordered list of
// participant ids with nil marking an explicit BYE. On any validation
// failure nothing is built; the returned tree is complete and self-consistent
// or the error names the offending field.
//
// Single and double elimination trees come out with round one populated (BYE
// matches already auto-won and propagated) and all later matches Locked.
// Round robin schedules every pairing up front. Swiss builds only the
// round/group skeleton; pairings are filled per round via PairSwissRound.
func BuildStage(stage *models.Stage, seeding []*int64) (*StageTree, error) {
	if err := validateSeeding(seeding); err != nil {
		return nil, err
	}

	switch stage.Type {
	case models.StageSingleElimination:
		return buildSingleElimination(stage, seeding)
	case models.StageDoubleElimination:
		return buildDoubleElimination(stage, seeding)
	case models.StageRoundRobin:
		return buildRoundRobin(stage, seeding)
	case models.StageSwiss:
		return buildSwiss(stage, seeding)
	default:
		return nil, validationErrorf("type", "unsupported stage type %q", stage.Type)
	}
}

func validateSeeding(seeding []*int64) error {
	count := 0
	seen := make(map[int64]bool, len(seeding))
	for _, id := range seeding {
		if id == nil {
			continue
		}
		if seen[*id] {
			return validationErrorf("seeding", "participant %d appears twice", *id)
		}
		seen[*id] = true
		count++
	}
	if count < 2 {
		return validationErrorf("seeding", "at least 2 participants required, got %d", count)
	}
	return nil
}

// effectiveOrdering resolves the first-round placement method. Crossing is
// the default: top seeds meet the bottom of the field first, and the padded
// BYE slots land against the top seeds, one per match, so no two BYEs ever
// meet. Balancing BYEs requires crossing, so the flag overrides an explicit
// ordering that cannot keep BYEs apart.
func effectiveOrdering(s models.StageSettings) models.SeedOrdering {
	if s.BalanceByes || s.SeedOrdering == "" {
		return models.OrderingCrossing
	}
	return s.SeedOrdering
}

// eliminationBestOf validates the per-match length for elimination stages,
// where a draw can never be terminal.
func eliminationBestOf(s models.StageSettings) (int, error) {
	bestOf := s.BestOf
	if bestOf == 0 {
		bestOf = 1
	}
	if bestOf < 1 || bestOf%2 == 0 {
		return 0, validationErrorf("best_of", "elimination stages need an odd best-of, got %d", bestOf)
	}
	return bestOf, nil
}

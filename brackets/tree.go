package brackets

import (
	"time"

	"github.com/inkzone/bracket-engine/models"
)

// StageTree is the full in-memory state of one stage: the static topology
// plus the mutable match results. Builders create it, progression mutates it,
// and the surrounding service persists whatever changed. IDs inside a freshly
// built tree are local (1-based per entity kind); the persistence layer
// remaps them when inserting.
type StageTree struct {
	Stage   *models.Stage
	Groups  []*models.Group
	Rounds  []*models.Round
	Matches []*models.Match

	matchByID map[int64]*models.Match
	roundByID map[int64]*models.Round
	groupByID map[int64]*models.Group
}

func (t *StageTree) index() {
	t.matchByID = make(map[int64]*models.Match, len(t.Matches))
	for _, m := range t.Matches {
		t.matchByID[m.ID] = m
	}
	t.roundByID = make(map[int64]*models.Round, len(t.Rounds))
	for _, r := range t.Rounds {
		t.roundByID[r.ID] = r
	}
	t.groupByID = make(map[int64]*models.Group, len(t.Groups))
	for _, g := range t.Groups {
		t.groupByID[g.ID] = g
	}
}

// Reindex rebuilds the id lookup maps. Callers that rewrite entity ids, such
// as the persistence layer remapping local ids to database ids, must call it
// before using the tree again.
func (t *StageTree) Reindex() {
	t.index()
}

// Match returns the match with the given id, or nil.
func (t *StageTree) Match(id int64) *models.Match {
	if t.matchByID == nil {
		t.index()
	}
	return t.matchByID[id]
}

// Round returns the round with the given id, or nil.
func (t *StageTree) Round(id int64) *models.Round {
	if t.roundByID == nil {
		t.index()
	}
	return t.roundByID[id]
}

// Group returns the group with the given id, or nil.
func (t *StageTree) Group(id int64) *models.Group {
	if t.groupByID == nil {
		t.index()
	}
	return t.groupByID[id]
}

// GroupByNumber returns the group with the given 1-based number, or nil.
func (t *StageTree) GroupByNumber(number int) *models.Group {
	for _, g := range t.Groups {
		if g.Number == number {
			return g
		}
	}
	return nil
}

// RoundsOfGroup returns the group's rounds in number order.
func (t *StageTree) RoundsOfGroup(groupID int64) []*models.Round {
	var out []*models.Round
	for _, r := range t.Rounds {
		if r.GroupID == groupID {
			out = append(out, r)
		}
	}
	return out
}

// MatchesOfRound returns the round's matches in number order.
func (t *StageTree) MatchesOfRound(roundID int64) []*models.Match {
	var out []*models.Match
	for _, m := range t.Matches {
		if m.RoundID == roundID {
			out = append(out, m)
		}
	}
	return out
}

// MaxRoundNumber returns the highest round number in the group.
func (t *StageTree) MaxRoundNumber(groupID int64) int {
	max := 0
	for _, r := range t.Rounds {
		if r.GroupID == groupID && r.Number > max {
			max = r.Number
		}
	}
	return max
}

// treeBuilder allocates local ids while a generator assembles the tree.
type treeBuilder struct {
	tree        *StageTree
	nextGroupID int64
	nextRoundID int64
	nextMatchID int64
	now         time.Time
}

func newTreeBuilder(stage *models.Stage) *treeBuilder {
	return &treeBuilder{
		tree: &StageTree{Stage: stage},
		now:  time.Now(),
	}
}

func (b *treeBuilder) addGroup(number int, typ models.GroupType) *models.Group {
	b.nextGroupID++
	g := &models.Group{
		ID:      b.nextGroupID,
		StageID: b.tree.Stage.ID,
		Number:  number,
		Type:    typ,
	}
	b.tree.Groups = append(b.tree.Groups, g)
	return g
}

func (b *treeBuilder) addRound(group *models.Group, number, bestOf int) *models.Round {
	b.nextRoundID++
	r := &models.Round{
		ID:      b.nextRoundID,
		StageID: b.tree.Stage.ID,
		GroupID: group.ID,
		Number:  number,
		BestOf:  bestOf,
	}
	b.tree.Rounds = append(b.tree.Rounds, r)
	return r
}

func (b *treeBuilder) addMatch(round *models.Round, number int, op1, op2 *models.ParticipantResult) *models.Match {
	b.nextMatchID++
	m := &models.Match{
		ID:        b.nextMatchID,
		StageID:   b.tree.Stage.ID,
		GroupID:   round.GroupID,
		RoundID:   round.ID,
		Number:    number,
		Status:    models.StatusLocked,
		Opponent1: op1,
		Opponent2: op2,
		BestOf:    round.BestOf,
		CreatedAt: b.now,
	}
	b.tree.Matches = append(b.tree.Matches, m)
	return m
}

// tbd is a fresh to-be-determined opponent slot.
func tbd() *models.ParticipantResult {
	return &models.ParticipantResult{}
}

// known is a fresh opponent slot holding a resolved participant.
func known(id int64) *models.ParticipantResult {
	v := id
	return &models.ParticipantResult{ID: &v}
}

// slotFor converts a placed seeding entry to an opponent slot: nil stays nil
// (BYE), a participant id becomes a resolved slot.
func slotFor(id *int64) *models.ParticipantResult {
	if id == nil {
		return nil
	}
	return known(*id)
}

// link records that m's winner flows into target's given slot, and the
// reverse feeder edge on the target.
func link(m, target *models.Match, slot models.Side) {
	id := m.ID
	target2 := target.ID
	m.WinnerNextID = &target2
	m.WinnerNextSlot = int(slot)
	if slot == models.SideOne {
		target.Source1ID = &id
	} else {
		target.Source2ID = &id
	}
}

// linkLoser records that m's loser flows into target's given slot. The feeder
// edge is recorded too so status transitions can count resolved sources.
func linkLoser(m, target *models.Match, slot models.Side) {
	id := m.ID
	target2 := target.ID
	m.LoserNextID = &target2
	m.LoserNextSlot = int(slot)
	if slot == models.SideOne {
		target.Source1ID = &id
	} else {
		target.Source2ID = &id
	}
}

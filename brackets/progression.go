package brackets

import (
	"fmt"
	"time"

	"github.com/inkzone/bracket-engine/models"
)

// Outcome is the result of one mutating engine operation: the match it was
// aimed at plus every match the operation touched (itself included), for the
// caller to persist and broadcast.
type Outcome struct {
	Match   *models.Match
	Updated []*models.Match
}

// mutSet collects mutated matches and bumps each match's version exactly
// once per operation, backing the compare-and-swap on persistence.
type mutSet map[int64]*models.Match

func (s mutSet) touch(m *models.Match) {
	if _, ok := s[m.ID]; !ok {
		m.Version++
		s[m.ID] = m
	}
}

func outcomeOf(m *models.Match, mut mutSet) *Outcome {
	out := &Outcome{Match: m, Updated: make([]*models.Match, 0, len(mut))}
	for _, u := range mut {
		out.Updated = append(out.Updated, u)
	}
	// Deterministic order for persistence and broadcasts.
	for i := 1; i < len(out.Updated); i++ {
		for j := i; j > 0 && out.Updated[j-1].ID > out.Updated[j].ID; j-- {
			out.Updated[j-1], out.Updated[j] = out.Updated[j], out.Updated[j-1]
		}
	}
	return out
}

// MatchIsOver reports whether a [score1, score2] pair decides a best-of
// series: one side must take strictly more than half the games.
func MatchIsOver(bestOf int, score []int) bool {
	if len(score) != 2 {
		return false
	}
	return score[0]*2 > bestOf || score[1]*2 > bestOf
}

// StartMatch marks a ready match as running. Informational only: reporting
// does not require it.
func StartMatch(tree *StageTree, matchID int64) (*models.Match, error) {
	m := tree.Match(matchID)
	if m == nil {
		return nil, &NotFoundError{Resource: "match", ID: matchID}
	}
	if m.Status != models.StatusReady {
		return nil, conflictErrorf("match %d is %s, not ready", matchID, m.Status)
	}
	m.Status = models.StatusRunning
	m.Version++
	return m, nil
}

// ReportResult stores the full game list of a match and re-evaluates it. The
// submitted list is authoritative: game N overwrites the stored game N, so a
// single game can be corrected by re-submitting the list. Completing a match
// advances its winner (and loser, where the topology consumes one) into the
// downstream matches; re-reporting an already-completed match is allowed only
// while no downstream match has started playing.
func ReportResult(tree *StageTree, matchID int64, games []models.GameResult) (*Outcome, error) {
	m := tree.Match(matchID)
	if m == nil {
		return nil, &NotFoundError{Resource: "match", ID: matchID}
	}
	if err := reportableState(tree, m); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, validationErrorf("games", "at least one game result required")
	}
	if len(games) > m.BestOf {
		return nil, validationErrorf("games", "%d game results exceed best-of-%d", len(games), m.BestOf)
	}
	for i, g := range games {
		if g.WinnerSide != models.SideOne && g.WinnerSide != models.SideTwo {
			return nil, validationErrorf("games", "game %d has invalid winner side %d", i+1, g.WinnerSide)
		}
	}

	mut := mutSet{}
	if m.Status >= models.StatusCompleted {
		retractOutcome(tree, m, mut)
	}
	mut.touch(m)
	m.Opponent1.Forfeit = false
	m.Opponent2.Forfeit = false

	now := time.Now()
	next := make([]models.Game, len(games))
	for i, g := range games {
		next[i] = models.Game{
			MatchID:      m.ID,
			Number:       i + 1,
			WinnerSide:   g.WinnerSide,
			MapID:        g.MapID,
			ModeID:       g.ModeID,
			Side1UserIDs: g.Side1UserIDs,
			Side2UserIDs: g.Side2UserIDs,
			CreatedAt:    now,
		}
		if i < len(m.Games) {
			next[i].ID = m.Games[i].ID
			next[i].CreatedAt = m.Games[i].CreatedAt
		}
	}
	m.Games = next
	m.LastGameFinishedAt = &now

	evaluate(tree, m, mut)
	return outcomeOf(m, mut), nil
}

// ReportForfeit completes a match in favor of the side that did not forfeit,
// regardless of games played.
func ReportForfeit(tree *StageTree, matchID int64, side models.Side) (*Outcome, error) {
	m := tree.Match(matchID)
	if m == nil {
		return nil, &NotFoundError{Resource: "match", ID: matchID}
	}
	if side != models.SideOne && side != models.SideTwo {
		return nil, validationErrorf("side", "invalid forfeiting side %d", side)
	}
	if err := reportableState(tree, m); err != nil {
		return nil, err
	}

	mut := mutSet{}
	if m.Status >= models.StatusCompleted {
		retractOutcome(tree, m, mut)
	}
	mut.touch(m)

	forfeiting := m.Opponent(side)
	winning := m.Opponent(side.Other())
	forfeiting.Forfeit = true
	forfeiting.Result = models.ResultLoss
	winning.Result = models.ResultWin
	m.Status = models.StatusCompleted
	now := time.Now()
	m.LastGameFinishedAt = &now

	propagateOutcome(tree, m, mut)
	return outcomeOf(m, mut), nil
}

// UndoResult removes the most recently reported game (LIFO) and re-evaluates
// the match. Undoing the decisive game reopens the match and retracts its
// winner and loser from every downstream match; that is refused once any
// downstream match has started playing. A forfeit with no games is undone
// the same way.
func UndoResult(tree *StageTree, matchID int64) (*Outcome, error) {
	m := tree.Match(matchID)
	if m == nil {
		return nil, &NotFoundError{Resource: "match", ID: matchID}
	}
	forfeited := (m.Opponent1 != nil && m.Opponent1.Forfeit) || (m.Opponent2 != nil && m.Opponent2.Forfeit)
	if len(m.Games) == 0 && !forfeited {
		return nil, conflictErrorf("match %d has no result to undo", matchID)
	}
	if m.Status >= models.StatusCompleted {
		if err := ensureReopenable(tree, m); err != nil {
			return nil, err
		}
	}

	mut := mutSet{}
	if m.Status >= models.StatusCompleted {
		retractOutcome(tree, m, mut)
	}
	mut.touch(m)

	if len(m.Games) > 0 {
		m.Games = m.Games[:len(m.Games)-1]
	}
	if m.Opponent1 != nil {
		m.Opponent1.Forfeit = false
	}
	if m.Opponent2 != nil {
		m.Opponent2.Forfeit = false
	}

	evaluate(tree, m, mut)
	return outcomeOf(m, mut), nil
}

// reportableState checks that a match can accept a (re-)report right now.
func reportableState(tree *StageTree, m *models.Match) error {
	if m.Opponent1 == nil || m.Opponent2 == nil {
		return conflictErrorf("match %d is a BYE and cannot be reported", m.ID)
	}
	if m.Opponent1.ID == nil || m.Opponent2.ID == nil {
		return conflictErrorf("match %d is not ready: opponents not decided yet", m.ID)
	}
	switch {
	case m.Status < models.StatusReady:
		return conflictErrorf("match %d is %s and cannot be reported", m.ID, m.Status)
	case m.Status >= models.StatusCompleted:
		return ensureReopenable(tree, m)
	}
	return nil
}

// ensureReopenable refuses to invalidate a completed match whose outcome a
// downstream match has already started playing with. Downstream matches that
// merely received the participant (or were auto-resolved by a BYE) are fine;
// they get retracted along with the result.
func ensureReopenable(tree *StageTree, m *models.Match) error {
	check := func(id *int64) error {
		if id == nil {
			return nil
		}
		c := tree.Match(*id)
		if c == nil {
			panic(fmt.Sprintf("bracket corrupt: match %d links to missing match %d", m.ID, *id))
		}
		if c.Status == models.StatusRunning || len(c.Games) > 0 {
			return conflictErrorf("match %d cannot be reopened: match %d already consumed its outcome", m.ID, c.ID)
		}
		if c.Status >= models.StatusCompleted && len(c.Games) == 0 && c.LastGameFinishedAt != nil {
			// Forfeit outcomes have no games but are real results.
			return conflictErrorf("match %d cannot be reopened: match %d already consumed its outcome", m.ID, c.ID)
		}
		return nil
	}
	if err := check(m.WinnerNextID); err != nil {
		return err
	}
	return check(m.LoserNextID)
}

// evaluate recomputes score, result and status of a match from its stored
// games, then advances or leaves it open accordingly.
func evaluate(tree *StageTree, m *models.Match, mut mutSet) {
	wins1, wins2 := 0, 0
	for _, g := range m.Games {
		if g.WinnerSide == models.SideOne {
			wins1++
		} else {
			wins2++
		}
	}

	if len(m.Games) == 0 {
		m.Opponent1.Score = nil
		m.Opponent2.Score = nil
		m.Opponent1.Result = models.ResultNone
		m.Opponent2.Result = models.ResultNone
		m.Status = models.StatusReady
		m.LastGameFinishedAt = nil
		return
	}

	s1, s2 := wins1, wins2
	m.Opponent1.Score = &s1
	m.Opponent2.Score = &s2

	switch {
	case MatchIsOver(m.BestOf, []int{wins1, 0}):
		m.Opponent1.Result = models.ResultWin
		m.Opponent2.Result = models.ResultLoss
		m.Status = models.StatusCompleted
		propagateOutcome(tree, m, mut)
	case MatchIsOver(m.BestOf, []int{0, wins2}):
		m.Opponent1.Result = models.ResultLoss
		m.Opponent2.Result = models.ResultWin
		m.Status = models.StatusCompleted
		propagateOutcome(tree, m, mut)
	case drawsAllowed(tree, m) && len(m.Games) == m.BestOf && wins1 == wins2:
		m.Opponent1.Result = models.ResultDraw
		m.Opponent2.Result = models.ResultDraw
		m.Status = models.StatusCompleted
		propagateOutcome(tree, m, mut)
	default:
		m.Opponent1.Result = models.ResultNone
		m.Opponent2.Result = models.ResultNone
		m.Status = models.StatusRunning
	}
}

func drawsAllowed(tree *StageTree, m *models.Match) bool {
	g := tree.Group(m.GroupID)
	if g == nil {
		return false
	}
	return g.Type == models.GroupRoundRobin || g.Type == models.GroupSwiss
}

// settle initializes statuses on a freshly built tree and resolves every
// match that needs no play: single BYEs auto-win and double BYEs pass the
// BYE through, cascading as far as the topology carries them.
func settle(tree *StageTree) {
	tree.index()
	for _, m := range tree.Matches {
		m.Status = initialStatus(m)
	}
	mut := mutSet{}
	for _, m := range tree.Matches {
		autoResolve(tree, m, mut)
	}
	for _, m := range tree.Matches {
		m.Version = 0
	}
}

// initialStatus derives Locked/Waiting/Ready from how many slots are
// resolved. A BYE slot counts as resolved: it behaves like a feeder that
// already finished.
func initialStatus(m *models.Match) models.Status {
	resolved := 0
	if m.Opponent1 == nil || m.Opponent1.ID != nil {
		resolved++
	}
	if m.Opponent2 == nil || m.Opponent2.ID != nil {
		resolved++
	}
	switch resolved {
	case 2:
		return models.StatusReady
	case 1:
		return models.StatusWaiting
	}
	return models.StatusLocked
}

// autoResolve completes a match that cannot be played: one BYE slot gives the
// real opponent an automatic win, two BYE slots archive the match and pass a
// BYE downstream.
func autoResolve(tree *StageTree, m *models.Match, mut mutSet) {
	if m.Status >= models.StatusCompleted {
		return
	}
	switch {
	case m.Opponent1 == nil && m.Opponent2 == nil:
		mut.touch(m)
		m.Status = models.StatusArchived
		propagateOutcome(tree, m, mut)
	case m.Opponent1 == nil && m.Opponent2 != nil && m.Opponent2.ID != nil:
		completeAutoWin(tree, m, models.SideTwo, mut)
	case m.Opponent2 == nil && m.Opponent1 != nil && m.Opponent1.ID != nil:
		completeAutoWin(tree, m, models.SideOne, mut)
	}
}

func completeAutoWin(tree *StageTree, m *models.Match, side models.Side, mut mutSet) {
	mut.touch(m)
	m.Opponent(side).Result = models.ResultWin
	m.Status = models.StatusCompleted
	propagateOutcome(tree, m, mut)
}

// propagateOutcome pushes a decided match's winner and loser into the
// downstream matches and re-checks archival of this match's feeders. Only
// causally-affected matches are touched.
func propagateOutcome(tree *StageTree, m *models.Match, mut mutSet) {
	var winnerID, loserID *int64
	doubleBye := m.Opponent1 == nil && m.Opponent2 == nil
	if !doubleBye {
		side, ok := winnerSideOf(m)
		if !ok {
			// Draws advance nobody.
			refreshArchival(tree, m, mut)
			return
		}
		winnerID = copyID(m.Opponent(side).ID)
		if loserSlot := m.Opponent(side.Other()); loserSlot != nil {
			loserID = copyID(loserSlot.ID)
		}

		// Grand final: the bracket reset is played only when the losers
		// bracket champion (slot 2) takes the opener.
		if reset := grandFinalReset(tree, m); reset != nil {
			mut.touch(reset)
			if side == models.SideOne {
				reset.Status = models.StatusArchived
			} else {
				fillSlot(tree, reset, models.Side(m.WinnerNextSlot), winnerID, mut)
				fillSlot(tree, reset, models.Side(m.LoserNextSlot), loserID, mut)
			}
			refreshArchival(tree, m, mut)
			return
		}
	}

	if m.WinnerNextID != nil {
		target := tree.Match(*m.WinnerNextID)
		fillSlot(tree, target, models.Side(m.WinnerNextSlot), winnerID, mut)
	}
	if m.LoserNextID != nil {
		target := tree.Match(*m.LoserNextID)
		fillSlot(tree, target, models.Side(m.LoserNextSlot), loserID, mut)
	}
	refreshArchival(tree, m, mut)
}

// grandFinalReset returns the reset match when m is the grand final opener of
// a double grand final, nil otherwise.
func grandFinalReset(tree *StageTree, m *models.Match) *models.Match {
	g := tree.Group(m.GroupID)
	if g == nil || g.Type != models.GroupFinal {
		return nil
	}
	r := tree.Round(m.RoundID)
	if r == nil || r.Number != 1 || m.WinnerNextID == nil {
		return nil
	}
	return tree.Match(*m.WinnerNextID)
}

// fillSlot resolves one opponent slot of a downstream match, either with a
// participant or with a BYE, and lets the match react: its status rises, and
// it may auto-resolve in turn.
func fillSlot(tree *StageTree, target *models.Match, slot models.Side, id *int64, mut mutSet) {
	if target == nil {
		panic("bracket corrupt: topology edge points at a missing match")
	}
	mut.touch(target)
	if id == nil {
		target.SetOpponent(slot, nil)
	} else if pr := target.Opponent(slot); pr == nil {
		target.SetOpponent(slot, known(*id))
	} else {
		pr.ID = copyID(id)
	}
	if target.Status < models.StatusCompleted {
		if next := initialStatus(target); next > target.Status {
			target.Status = next
		}
	}
	autoResolve(tree, target, mut)
}

// retractOutcome is the inverse of propagateOutcome: it pulls a
// now-invalidated winner and loser back out of the downstream matches
// (cascading through auto-resolved ones) and un-archives feeders that were
// archived on the strength of this match's completion.
func retractOutcome(tree *StageTree, m *models.Match, mut mutSet) {
	if m.WinnerNextID != nil {
		retractSlot(tree, *m.WinnerNextID, models.Side(m.WinnerNextSlot), mut)
	}
	if m.LoserNextID != nil {
		retractSlot(tree, *m.LoserNextID, models.Side(m.LoserNextSlot), mut)
	}

	unarchive := func(id *int64) {
		if id == nil {
			return
		}
		if f := tree.Match(*id); f != nil && f.Status == models.StatusArchived {
			mut.touch(f)
			f.Status = models.StatusCompleted
		}
	}
	unarchive(m.Source1ID)
	unarchive(m.Source2ID)
}

func retractSlot(tree *StageTree, matchID int64, slot models.Side, mut mutSet) {
	c := tree.Match(matchID)
	if c == nil {
		panic("bracket corrupt: topology edge points at a missing match")
	}
	if c.Status >= models.StatusCompleted && len(c.Games) == 0 {
		// Auto-resolved consumer: unwind whatever it propagated first.
		retractOutcome(tree, c, mut)
	}
	mut.touch(c)
	c.SetOpponent(slot, tbd())
	if other := c.Opponent(slot.Other()); other != nil {
		other.Result = models.ResultNone
		other.Score = nil
	}
	c.Status = initialStatus(c)
}

// refreshArchival archives the feeders of a just-completed match once every
// downstream consumer of theirs is decided. Archived is bookkeeping, not a
// barrier: it marks "no further corrections expected".
func refreshArchival(tree *StageTree, m *models.Match, mut mutSet) {
	maybeArchive := func(id *int64) {
		if id == nil {
			return
		}
		f := tree.Match(*id)
		if f == nil || f.Status != models.StatusCompleted {
			return
		}
		if consumersCompleted(tree, f) {
			mut.touch(f)
			f.Status = models.StatusArchived
		}
	}
	maybeArchive(m.Source1ID)
	maybeArchive(m.Source2ID)
}

func consumersCompleted(tree *StageTree, m *models.Match) bool {
	check := func(id *int64) bool {
		if id == nil {
			return true
		}
		c := tree.Match(*id)
		return c != nil && c.Status >= models.StatusCompleted
	}
	return check(m.WinnerNextID) && check(m.LoserNextID)
}

func winnerSideOf(m *models.Match) (models.Side, bool) {
	if m.Opponent1 != nil && m.Opponent1.Result == models.ResultWin {
		return models.SideOne, true
	}
	if m.Opponent2 != nil && m.Opponent2.Result == models.ResultWin {
		return models.SideTwo, true
	}
	return 0, false
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

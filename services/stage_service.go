package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkzone/bracket-engine/brackets"
	"github.com/inkzone/bracket-engine/models"
	"github.com/inkzone/bracket-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type GenerateStageInput struct {
	Name     string               `json:"name"`
	Type     models.StageType     `json:"type"`
	Settings models.StageSettings `json:"settings"`
	// Seeds ranks participant ids strongest first. Participants left out keep
	// their registration order behind the seeded ones.
	Seeds []int64 `json:"seeds,omitempty"`
}

type StageService interface {
	Generate(ctx context.Context, userID, tournamentID int64, input GenerateStageInput) (*brackets.StageTree, error)
	GetTree(ctx context.Context, stageID int64) (*brackets.StageTree, error)
	PairSwissRound(ctx context.Context, userID, stageID int64, groupNumber int) ([]*models.Match, error)
	Delete(ctx context.Context, userID, stageID int64) error
}

type stageService struct {
	db              *sql.DB
	stageRepo       repositories.StageRepository
	matchRepo       repositories.MatchRepository
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	locks           *stageLocks
	hub             *brackets.Hub
	logger          *slog.Logger
}

func NewStageService(
	db *sql.DB,
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	locks *stageLocks,
	hub *brackets.Hub,
	logger *slog.Logger,
) StageService {
	return &stageService{
		db:              db,
		stageRepo:       stageRepo,
		matchRepo:       matchRepo,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		locks:           locks,
		hub:             hub,
		logger:          logger,
	}
}

// Generate builds a stage tree from the tournament's entrants and persists it
// in one transaction. Nothing is written when generation fails validation.
func (s *stageService) Generate(ctx context.Context, userID, tournamentID int64, input GenerateStageInput) (*brackets.StageTree, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrStageNameRequired
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if t.OrganizerID != userID {
		return nil, ErrForbiddenOperation
	}

	entrants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	if len(entrants) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	// An explicit seeds list wins; otherwise the seed numbers participants
	// registered with decide the order.
	seeds := input.Seeds
	if len(seeds) == 0 {
		seeds = brackets.SeedsFromRegistration(entrants)
	}
	ordered := brackets.OrderBySeed(entrants, seeds)
	seeding := make([]*int64, len(ordered))
	for i, p := range ordered {
		id := p.ID
		seeding[i] = &id
	}

	existing, err := s.stageRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	stage := &models.Stage{
		TournamentID: tournamentID,
		Name:         strings.TrimSpace(input.Name),
		Type:         input.Type,
		Number:       len(existing) + 1,
		Settings:     input.Settings,
	}

	tree, err := brackets.BuildStage(stage, seeding)
	if err != nil {
		return nil, err
	}

	if err := s.persistTree(ctx, tree); err != nil {
		return nil, err
	}

	s.hub.BroadcastToStage(stage.ID, brackets.StageEvent{
		Type:    "STAGE_GENERATED",
		StageID: stage.ID,
		Payload: stage,
	})
	s.logger.Info("stage generated",
		slog.Int64("stage_id", stage.ID),
		slog.String("type", string(stage.Type)),
		slog.Int("matches", len(tree.Matches)))
	return tree, nil
}

// persistTree inserts the whole tree, remapping the builder's local ids to
// database ids. Matches go in two passes: rows first, then topology edges,
// since the edges reference ids that do not exist until every row is in.
func (s *stageService) persistTree(ctx context.Context, tree *brackets.StageTree) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stage := tree.Stage
	if err := s.stageRepo.Create(ctx, tx, stage); err != nil {
		return fmt.Errorf("failed to insert stage: %w", err)
	}

	groupIDs := make(map[int64]int64, len(tree.Groups))
	for _, g := range tree.Groups {
		local := g.ID
		g.StageID = stage.ID
		if err := s.stageRepo.CreateGroup(ctx, tx, g); err != nil {
			return fmt.Errorf("failed to insert group %d: %w", local, err)
		}
		groupIDs[local] = g.ID
	}

	roundIDs := make(map[int64]int64, len(tree.Rounds))
	for _, r := range tree.Rounds {
		local := r.ID
		r.StageID = stage.ID
		r.GroupID = groupIDs[r.GroupID]
		if err := s.stageRepo.CreateRound(ctx, tx, r); err != nil {
			return fmt.Errorf("failed to insert round %d: %w", local, err)
		}
		roundIDs[local] = r.ID
	}

	matchIDs := make(map[int64]int64, len(tree.Matches))
	for _, m := range tree.Matches {
		local := m.ID
		m.StageID = stage.ID
		m.GroupID = groupIDs[m.GroupID]
		m.RoundID = roundIDs[m.RoundID]
		if err := s.matchRepo.Create(ctx, tx, m); err != nil {
			return fmt.Errorf("failed to insert match %d: %w", local, err)
		}
		matchIDs[local] = m.ID
	}

	remap := func(id *int64) *int64 {
		if id == nil {
			return nil
		}
		real, ok := matchIDs[*id]
		if !ok {
			panic(fmt.Sprintf("tree references unknown match id %d", *id))
		}
		return &real
	}
	for _, m := range tree.Matches {
		m.Source1ID = remap(m.Source1ID)
		m.Source2ID = remap(m.Source2ID)
		m.WinnerNextID = remap(m.WinnerNextID)
		m.LoserNextID = remap(m.LoserNextID)
		if err := s.matchRepo.UpdateTopology(ctx, tx, m); err != nil {
			return fmt.Errorf("failed to write topology of match %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stage tree: %w", err)
	}

	tree.Reindex()
	return nil
}

// GetTree loads the full stage state. The four entity fetches are
// independent, so they run concurrently.
func (s *stageService) GetTree(ctx context.Context, stageID int64) (*brackets.StageTree, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}

	tree := &brackets.StageTree{Stage: stage}
	var games []models.Game

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tree.Groups, err = s.stageRepo.ListGroups(ctx, stageID)
		return err
	})
	g.Go(func() error {
		var err error
		tree.Rounds, err = s.stageRepo.ListRounds(ctx, stageID)
		return err
	})
	g.Go(func() error {
		var err error
		tree.Matches, err = s.matchRepo.ListByStage(ctx, stageID)
		return err
	})
	g.Go(func() error {
		var err error
		games, err = s.matchRepo.ListGamesByStage(ctx, stageID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load stage %d tree: %w", stageID, err)
	}

	tree.Reindex()
	for _, game := range games {
		if m := tree.Match(game.MatchID); m != nil {
			m.Games = append(m.Games, game)
		}
	}
	return tree, nil
}

// PairSwissRound pairs the next round of a swiss group and persists the
// readied matches.
func (s *stageService) PairSwissRound(ctx context.Context, userID, stageID int64, groupNumber int) ([]*models.Match, error) {
	unlock := s.locks.lock(stageID)
	defer unlock()

	tree, err := s.GetTree(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if tree.Stage.Type != models.StageSwiss {
		return nil, ErrStageNotSwiss
	}
	if _, err := s.requireOrganizer(ctx, userID, tree.Stage.TournamentID); err != nil {
		return nil, err
	}

	entrants, err := s.participantRepo.ListByTournament(ctx, tree.Stage.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	ordered := brackets.OrderBySeed(entrants, brackets.SeedsFromRegistration(entrants))
	participants := make([]int64, len(ordered))
	for i, p := range ordered {
		participants[i] = p.ID
	}

	// Each group pairs only its own members. Membership is recovered from the
	// deterministic split the builder sized the groups by.
	groups := brackets.SwissGroups(participants, len(tree.Groups))
	var members []int64
	if groupNumber >= 1 && groupNumber <= len(groups) {
		members = groups[groupNumber-1]
	}

	matches, err := brackets.PairSwissRound(tree, groupNumber, members, foldPairer{})
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	for _, m := range matches {
		if err := s.matchRepo.Update(ctx, tx, m); err != nil {
			if errors.Is(err, repositories.ErrMatchVersionConflict) {
				return nil, ErrStageConflict
			}
			return nil, fmt.Errorf("failed to persist paired match %d: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit swiss pairing: %w", err)
	}

	s.hub.BroadcastToStage(stageID, brackets.StageEvent{
		Type:    "ROUND_PAIRED",
		StageID: stageID,
		Payload: matches,
	})
	return matches, nil
}

func (s *stageService) Delete(ctx context.Context, userID, stageID int64) error {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if _, err := s.requireOrganizer(ctx, userID, stage.TournamentID); err != nil {
		return err
	}
	if err := s.stageRepo.Delete(ctx, s.db, stageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to delete stage %d: %w", stageID, err)
	}
	return nil
}

func (s *stageService) requireOrganizer(ctx context.Context, userID, tournamentID int64) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if t.OrganizerID != userID {
		return nil, ErrForbiddenOperation
	}
	return t, nil
}

// foldPairer is the default swiss pairing policy: fold the field in half
// (1 vs n/2+1, 2 vs n/2+2, ...) and nudge pairs apart greedily when the fold
// would repeat an earlier pairing.
type foldPairer struct{}

func (foldPairer) Pair(participants []int64, played [][2]int64) ([][2]int64, error) {
	seen := make(map[[2]int64]bool, len(played))
	for _, p := range played {
		seen[[2]int64{p[0], p[1]}] = true
		seen[[2]int64{p[1], p[0]}] = true
	}

	remaining := append([]int64(nil), participants...)
	pairs := make([][2]int64, 0, len(remaining)/2)
	for len(remaining) >= 2 {
		a := remaining[0]
		pick := len(remaining) / 2
		for i := pick; i < len(remaining); i++ {
			if !seen[[2]int64{a, remaining[i]}] {
				pick = i
				break
			}
		}
		b := remaining[pick]
		pairs = append(pairs, [2]int64{a, b})
		remaining = append(remaining[1:pick], remaining[pick+1:]...)
	}
	return pairs, nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inkzone/bracket-engine/brackets"
	"github.com/inkzone/bracket-engine/models"
	"github.com/inkzone/bracket-engine/repositories"
)

// stageLocks serializes mutating operations per stage. The engine works on a
// full in-memory tree, so two concurrent reports against the same stage must
// not interleave; different stages proceed independently. The version CAS on
// persistence remains as the cross-process guard.
type stageLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewStageLocks() *stageLocks {
	return &stageLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *stageLocks) lock(stageID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[stageID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[stageID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

type MatchService interface {
	Start(ctx context.Context, matchID int64) (*models.Match, error)
	ReportResult(ctx context.Context, matchID int64, games []models.GameResult) (*brackets.Outcome, error)
	ReportForfeit(ctx context.Context, matchID int64, side models.Side) (*brackets.Outcome, error)
	UndoResult(ctx context.Context, matchID int64) (*brackets.Outcome, error)
}

type matchService struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
	stages    StageService
	locks     *stageLocks
	hub       *brackets.Hub
	logger    *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	stages StageService,
	locks *stageLocks,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:        db,
		matchRepo: matchRepo,
		stages:    stages,
		locks:     locks,
		hub:       hub,
		logger:    logger,
	}
}

func (s *matchService) Start(ctx context.Context, matchID int64) (*models.Match, error) {
	var started *models.Match
	err := s.mutate(ctx, matchID, func(tree *brackets.StageTree) (*brackets.Outcome, error) {
		m, err := brackets.StartMatch(tree, matchID)
		if err != nil {
			return nil, err
		}
		started = m
		return &brackets.Outcome{Match: m, Updated: []*models.Match{m}}, nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

func (s *matchService) ReportResult(ctx context.Context, matchID int64, games []models.GameResult) (*brackets.Outcome, error) {
	var out *brackets.Outcome
	err := s.mutate(ctx, matchID, func(tree *brackets.StageTree) (*brackets.Outcome, error) {
		var err error
		out, err = brackets.ReportResult(tree, matchID, games)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *matchService) ReportForfeit(ctx context.Context, matchID int64, side models.Side) (*brackets.Outcome, error) {
	var out *brackets.Outcome
	err := s.mutate(ctx, matchID, func(tree *brackets.StageTree) (*brackets.Outcome, error) {
		var err error
		out, err = brackets.ReportForfeit(tree, matchID, side)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *matchService) UndoResult(ctx context.Context, matchID int64) (*brackets.Outcome, error) {
	var out *brackets.Outcome
	err := s.mutate(ctx, matchID, func(tree *brackets.StageTree) (*brackets.Outcome, error) {
		var err error
		out, err = brackets.UndoResult(tree, matchID)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mutate runs one engine operation against the match's stage tree under the
// stage lock and persists every match the operation touched. The whole
// changed set commits in one transaction; a version conflict rolls everything
// back and surfaces as ErrStageConflict.
func (s *matchService) mutate(ctx context.Context, matchID int64, op func(*brackets.StageTree) (*brackets.Outcome, error)) error {
	row, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	unlock := s.locks.lock(row.StageID)
	defer unlock()

	tree, err := s.stages.GetTree(ctx, row.StageID)
	if err != nil {
		return err
	}

	out, err := op(tree)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range out.Updated {
		if err := s.matchRepo.Update(ctx, tx, m); err != nil {
			if errors.Is(err, repositories.ErrMatchVersionConflict) {
				return ErrStageConflict
			}
			return fmt.Errorf("failed to persist match %d: %w", m.ID, err)
		}
	}
	// The operation's target owns the authoritative game list; downstream
	// matches never change games.
	if err := s.matchRepo.ReplaceGames(ctx, tx, out.Match.ID, out.Match.Games); err != nil {
		return fmt.Errorf("failed to persist games of match %d: %w", out.Match.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match update: %w", err)
	}

	s.hub.BroadcastToStage(row.StageID, brackets.StageEvent{
		Type:    "MATCH_UPDATED",
		StageID: row.StageID,
		Payload: out.Updated,
	})
	s.logger.Info("match updated",
		slog.Int64("stage_id", row.StageID),
		slog.Int64("match_id", matchID),
		slog.Int("touched", len(out.Updated)))
	return nil
}

package services

import (
	"context"
	"fmt"

	"github.com/inkzone/bracket-engine/brackets"
	"github.com/inkzone/bracket-engine/repositories"
)

type HistoryService interface {
	TeamSets(ctx context.Context, teamID int64) ([]brackets.PlayedSet, error)
	TeamWinCounts(ctx context.Context, teamID int64) (brackets.WinCountSummary, error)
}

type historyService struct {
	historyRepo repositories.HistoryRepository
}

func NewHistoryService(historyRepo repositories.HistoryRepository) HistoryService {
	return &historyService{historyRepo: historyRepo}
}

func (s *historyService) TeamSets(ctx context.Context, teamID int64) ([]brackets.PlayedSet, error) {
	matches, err := s.historyRepo.ListTeamMatches(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches of team %d: %w", teamID, err)
	}
	games, err := s.historyRepo.ListTeamGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load games of team %d: %w", teamID, err)
	}
	return brackets.SetHistory(teamID, matches, games), nil
}

func (s *historyService) TeamWinCounts(ctx context.Context, teamID int64) (brackets.WinCountSummary, error) {
	sets, err := s.TeamSets(ctx, teamID)
	if err != nil {
		return brackets.WinCountSummary{}, err
	}
	return brackets.WinCounts(sets), nil
}

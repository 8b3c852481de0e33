package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkzone/bracket-engine/models"
	"github.com/inkzone/bracket-engine/repositories"
)

type RegisterParticipantInput struct {
	Name string `json:"name"`
	Seed *int   `json:"seed,omitempty"`
}

type ParticipantService interface {
	Register(ctx context.Context, userID, tournamentID int64, input RegisterParticipantInput) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int64) ([]*models.Participant, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
	}
}

func (s *participantService) Register(ctx context.Context, userID, tournamentID int64, input RegisterParticipantInput) (*models.Participant, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrParticipantNameRequired
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	// Only the organizer manages the entrant list; seeding changes after
	// bracket generation would not be reflected anyway.
	if t.OrganizerID != userID {
		return nil, ErrForbiddenOperation
	}
	if t.Status != models.TournamentDraft {
		return nil, fmt.Errorf("%w: registration is closed once the tournament leaves draft", ErrValidationFailed)
	}

	p := &models.Participant{
		TournamentID: tournamentID,
		Name:         strings.TrimSpace(input.Name),
		Seed:         input.Seed,
	}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}
	return p, nil
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID int64) ([]*models.Participant, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of tournament %d: %w", tournamentID, err)
	}
	return participants, nil
}

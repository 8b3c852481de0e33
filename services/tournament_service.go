package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/inkzone/bracket-engine/models"
	"github.com/inkzone/bracket-engine/repositories"
	"github.com/inkzone/bracket-engine/storage"
)

var allowedLogoContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int64, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int64) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, userID, tournamentID int64, status models.TournamentStatus) error
	UploadLogo(ctx context.Context, userID, tournamentID int64, contentType string, file io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	stageRepo       repositories.StageRepository
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	stageRepo repositories.StageRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		stageRepo:       stageRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int64, t *models.Tournament) error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTournamentNameRequired
	}

	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load organizer: %w", err)
	}
	if organizer.Role != models.RoleOrganizer {
		return ErrForbiddenOperation
	}

	t.OrganizerID = organizerID
	t.Status = models.TournamentDraft

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.Info("tournament created",
		slog.Int64("tournament_id", t.ID),
		slog.Int64("organizer_id", organizerID))
	return nil
}

// GetByID returns the tournament with its stages and participants attached.
func (s *tournamentService) GetByID(ctx context.Context, id int64) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	stages, err := s.stageRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages of tournament %d: %w", id, err)
	}
	for _, stage := range stages {
		t.Stages = append(t.Stages, *stage)
	}

	participants, err := s.participantRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants of tournament %d: %w", id, err)
	}
	for _, p := range participants {
		t.Participants = append(t.Participants, *p)
	}

	s.resolveLogoURL(t)
	return t, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, t := range tournaments {
		s.resolveLogoURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, userID, tournamentID int64, status models.TournamentStatus) error {
	switch status {
	case models.TournamentDraft, models.TournamentOngoing, models.TournamentCompleted, models.TournamentCanceled:
	default:
		return fmt.Errorf("%w: unknown tournament status %q", ErrValidationFailed, status)
	}

	if _, err := s.requireOrganizer(ctx, userID, tournamentID); err != nil {
		return err
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, tournamentID, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return nil
}

// UploadLogo stores the logo under a fresh object key, points the tournament
// at it, and removes the previous object afterwards. A failed cleanup only
// logs: the new logo is already live.
func (s *tournamentService) UploadLogo(ctx context.Context, userID, tournamentID int64, contentType string, file io.Reader) (*models.Tournament, error) {
	ext, ok := allowedLogoContentTypes[contentType]
	if !ok {
		return nil, ErrLogoContentTypeNotAllowed
	}

	t, err := s.requireOrganizer(ctx, userID, tournamentID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/logo/%s%s", tournamentID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}

	oldKey := t.LogoKey
	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournamentID, &key); err != nil {
		return nil, fmt.Errorf("failed to store logo key: %w", err)
	}
	t.LogoKey = &key

	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous tournament logo",
				slog.Int64("tournament_id", tournamentID),
				slog.String("key", *oldKey),
				slog.Any("error", err))
		}
	}

	s.resolveLogoURL(t)
	return t, nil
}

func (s *tournamentService) requireOrganizer(ctx context.Context, userID, tournamentID int64) (*models.Tournament, error) {
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

func (s *tournamentService) resolveLogoURL(t *models.Tournament) {
	if t.LogoKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
		t.LogoURL = &url
	}
}

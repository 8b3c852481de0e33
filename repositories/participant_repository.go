package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkzone/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("participant is already registered for this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id int64) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int64) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, name, seed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.TournamentID, p.Name, p.Seed).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrParticipantConflict
			case "23503":
				return ErrTournamentNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	query := `
		SELECT id, tournament_id, name, seed, created_at
		FROM participants
		WHERE id = $1`

	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.TournamentID, &p.Name, &p.Seed, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByTournament returns entrants in registration order, the tie-break the
// seeding comparator relies on.
func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int64) ([]*models.Participant, error) {
	query := `
		SELECT id, tournament_id, name, seed, created_at
		FROM participants
		WHERE tournament_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.Name, &p.Seed, &p.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkzone/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int64) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int64, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, id int64, logoKey *string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, description, organizer_id, status, start_date, logo_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Description,
		t.OrganizerID,
		t.Status,
		t.StartDate,
		t.LogoKey,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "tournaments_name_key" {
			return ErrTournamentNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int64) (*models.Tournament, error) {
	query := `
		SELECT id, name, description, organizer_id, status, start_date, logo_key, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.OrganizerID,
		&t.Status,
		&t.StartDate,
		&t.LogoKey,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, description, organizer_id, status, start_date, logo_key, created_at
		FROM tournaments
		ORDER BY start_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Description,
			&t.OrganizerID,
			&t.Status,
			&t.StartDate,
			&t.LogoKey,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id int64, status models.TournamentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int64, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

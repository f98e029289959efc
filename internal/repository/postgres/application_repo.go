package postgres

import (
	"context"
	"time"

	"pcd-jobs-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Create inserts a new application. The (posting_id, candidate_id) unique
// constraint turns a duplicate into a conflict error.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, posting_id, candidate_id, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.ApplicationStatusPending
	}

	_, err := conn(ctx, r.db).Exec(ctx, query,
		app.ID, app.PostingID, app.CandidateID, app.Message, app.Status, app.CreatedAt, app.UpdatedAt,
	)
	return mapError(err, "You have already applied to this posting")
}

func scanApplication(row pgx.Row, app *domain.Application) error {
	return row.Scan(
		&app.ID, &app.PostingID, &app.CandidateID, &app.Message, &app.Status,
		&app.CompanyRating, &app.CompanyNotes, &app.CreatedAt, &app.UpdatedAt, &app.PostingTitle,
	)
}

const applicationSelect = `
	SELECT a.id, a.posting_id, a.candidate_id, a.message, a.status,
		a.company_rating, a.company_notes, a.created_at, a.updated_at, p.title
	FROM applications a
	LEFT JOIN postings p ON a.posting_id = p.id`

// GetByID retrieves an application by ID with its posting title
func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	if err := scanApplication(conn(ctx, r.db).QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id), &app); err != nil {
		return nil, mapError(err, "")
	}
	return &app, nil
}

// GetForUpdate retrieves an application and locks its row
func (r *applicationRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	query := applicationSelect + ` WHERE a.id = $1 FOR UPDATE OF a`
	if err := scanApplication(conn(ctx, r.db).QueryRow(ctx, query, id), &app); err != nil {
		return nil, mapError(err, "")
	}
	return &app, nil
}

func (r *applicationRepo) list(ctx context.Context, where string, arg any) ([]domain.Application, error) {
	rows, err := conn(ctx, r.db).Query(ctx, applicationSelect+where+` ORDER BY a.created_at DESC, a.id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := []domain.Application{}
	for rows.Next() {
		var app domain.Application
		if err := scanApplication(rows, &app); err != nil {
			return nil, err
		}
		applications = append(applications, app)
	}
	return applications, rows.Err()
}

// GetByPostingID retrieves all applications for a posting
func (r *applicationRepo) GetByPostingID(ctx context.Context, postingID uuid.UUID) ([]domain.Application, error) {
	return r.list(ctx, ` WHERE a.posting_id = $1`, postingID)
}

// GetByCandidateID retrieves all applications of a candidate
func (r *applicationRepo) GetByCandidateID(ctx context.Context, candidateID uuid.UUID) ([]domain.Application, error) {
	return r.list(ctx, ` WHERE a.candidate_id = $1`, candidateID)
}

// Update saves status, rating and notes and sets updated_at
func (r *applicationRepo) Update(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications SET status = $2, company_rating = $3, company_notes = $4, updated_at = $5
		WHERE id = $1`

	app.UpdatedAt = time.Now().UTC()
	result, err := conn(ctx, r.db).Exec(ctx, query,
		app.ID, app.Status, app.CompanyRating, app.CompanyNotes, app.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

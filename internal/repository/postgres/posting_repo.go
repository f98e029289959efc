package postgres

import (
	"context"
	"time"

	"pcd-jobs-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const postingColumns = `
	p.id, p.company_id, p.title, p.description, p.kind, p.work_mode, p.location,
	p.salary_min, p.salary_max, p.show_salary, p.resource_ids, p.status, p.view_count,
	p.created_at, p.updated_at, p.published_at`

type postingRepo struct {
	db *pgxpool.Pool
}

// NewPostingRepository creates a new posting repository
func NewPostingRepository(db *pgxpool.Pool) domain.PostingRepository {
	return &postingRepo{db: db}
}

func scanPosting(row pgx.Row, p *domain.Posting) error {
	var resourceIDs []int64
	if err := row.Scan(
		&p.ID, &p.CompanyID, &p.Title, &p.Description, &p.Kind, &p.WorkMode, &p.Location,
		&p.SalaryMin, &p.SalaryMax, &p.ShowSalary, pq.Array(&resourceIDs), &p.Status, &p.ViewCount,
		&p.CreatedAt, &p.UpdatedAt, &p.PublishedAt,
	); err != nil {
		return err
	}
	if resourceIDs == nil {
		resourceIDs = []int64{}
	}
	p.ResourceIDs = resourceIDs
	return nil
}

func collectPostings(rows pgx.Rows) ([]domain.Posting, error) {
	defer rows.Close()

	postings := []domain.Posting{}
	for rows.Next() {
		var p domain.Posting
		if err := scanPosting(rows, &p); err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// Create inserts a new posting
func (r *postingRepo) Create(ctx context.Context, p *domain.Posting) error {
	query := `
		INSERT INTO postings (id, company_id, title, description, kind, work_mode, location,
			salary_min, salary_max, show_salary, resource_ids, status, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, $13, $14)`

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.ResourceIDs == nil {
		p.ResourceIDs = []int64{}
	}

	_, err := conn(ctx, r.db).Exec(ctx, query,
		p.ID, p.CompanyID, p.Title, p.Description, p.Kind, p.WorkMode, p.Location,
		p.SalaryMin, p.SalaryMax, p.ShowSalary, pq.Array(p.ResourceIDs), p.Status,
		p.CreatedAt, p.UpdatedAt,
	)
	return mapError(err, "Posting already exists")
}

// GetByID retrieves a posting by ID
func (r *postingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings p WHERE p.id = $1`

	var p domain.Posting
	if err := scanPosting(conn(ctx, r.db).QueryRow(ctx, query, id), &p); err != nil {
		return nil, mapError(err, "")
	}
	return &p, nil
}

// GetForUpdate retrieves a posting and locks its row
func (r *postingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Posting, error) {
	return r.getLocked(ctx, id, "FOR UPDATE")
}

// GetForShare retrieves a posting with a shared row lock: status changes
// wait, concurrent readers do not.
func (r *postingRepo) GetForShare(ctx context.Context, id uuid.UUID) (*domain.Posting, error) {
	return r.getLocked(ctx, id, "FOR SHARE")
}

func (r *postingRepo) getLocked(ctx context.Context, id uuid.UUID, lock string) (*domain.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings p WHERE p.id = $1 ` + lock

	var p domain.Posting
	if err := scanPosting(conn(ctx, r.db).QueryRow(ctx, query, id), &p); err != nil {
		return nil, mapError(err, "")
	}
	return &p, nil
}

// Update saves the editable fields together with the status
func (r *postingRepo) Update(ctx context.Context, p *domain.Posting) error {
	query := `
		UPDATE postings SET
			title = $2, description = $3, kind = $4, work_mode = $5, location = $6,
			salary_min = $7, salary_max = $8, show_salary = $9, resource_ids = $10,
			status = $11, updated_at = $12
		WHERE id = $1`

	p.UpdatedAt = time.Now().UTC()
	result, err := conn(ctx, r.db).Exec(ctx, query,
		p.ID, p.Title, p.Description, p.Kind, p.WorkMode, p.Location,
		p.SalaryMin, p.SalaryMax, p.ShowSalary, pq.Array(p.ResourceIDs),
		p.Status, p.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "")
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus persists status and published_at
func (r *postingRepo) UpdateStatus(ctx context.Context, p *domain.Posting) error {
	query := `UPDATE postings SET status = $2, published_at = $3, updated_at = $4 WHERE id = $1`

	p.UpdatedAt = time.Now().UTC()
	result, err := conn(ctx, r.db).Exec(ctx, query, p.ID, p.Status, p.PublishedAt, p.UpdatedAt)
	if err != nil {
		return mapError(err, "")
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter of an open posting and returns the new value
func (r *postingRepo) IncrementViews(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `UPDATE postings SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`

	var views int64
	if err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(&views); err != nil {
		return 0, mapError(err, "")
	}
	return views, nil
}

// Delete removes a posting; evaluations, applications and conversations cascade
func (r *postingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM postings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FetchByCompanyID lists a company's postings, newest first
func (r *postingRepo) FetchByCompanyID(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]domain.Posting, int64, error) {
	q := conn(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM postings WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + postingColumns + ` FROM postings p
		WHERE p.company_id = $1
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3`
	rows, err := q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	postings, err := collectPostings(rows)
	return postings, total, err
}

// FetchByStatus lists postings in a status, oldest first
func (r *postingRepo) FetchByStatus(ctx context.Context, status domain.PostingStatus, limit, offset int) ([]domain.Posting, int64, error) {
	q := conn(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM postings WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + postingColumns + ` FROM postings p
		WHERE p.status = $1
		ORDER BY p.created_at ASC, p.id
		LIMIT $2 OFFSET $3`
	rows, err := q.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	postings, err := collectPostings(rows)
	return postings, total, err
}

// FetchCompatible lists open postings whose latest approved evaluation
// shares at least one category with categoryIDs
func (r *postingRepo) FetchCompatible(ctx context.Context, categoryIDs []int64, limit, offset int) ([]domain.Posting, int64, error) {
	if len(categoryIDs) == 0 {
		return []domain.Posting{}, 0, nil
	}

	filter := `
		FROM postings p
		JOIN LATERAL (
			SELECT e.eligible_category_ids
			FROM medical_evaluations e
			WHERE e.posting_id = p.id AND e.status = 'approved'
			ORDER BY e.seq DESC
			LIMIT 1
		) le ON TRUE
		WHERE p.status = 'open' AND le.eligible_category_ids && $1::bigint[]`

	q := conn(ctx, r.db)
	ids := pq.Array(categoryIDs)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) `+filter, ids).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + postingColumns + filter + `
		ORDER BY p.published_at DESC NULLS LAST, p.id
		LIMIT $2 OFFSET $3`
	rows, err := q.Query(ctx, query, ids, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	postings, err := collectPostings(rows)
	return postings, total, err
}

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

const evaluationColumns = `
	id, posting_id, seq, doctor_id, eligible_category_ids, notes,
	recommended_adjustments, status, decided_at, created_at`

type evaluationRepo struct {
	db *pgxpool.Pool
}

// NewEvaluationRepository creates a new medical evaluation repository
func NewEvaluationRepository(db *pgxpool.Pool) domain.EvaluationRepository {
	return &evaluationRepo{db: db}
}

func scanEvaluation(row pgx.Row, e *domain.MedicalEvaluation) error {
	var categoryIDs []int64
	if err := row.Scan(
		&e.ID, &e.PostingID, &e.Sequence, &e.DoctorID, pq.Array(&categoryIDs), &e.Notes,
		&e.RecommendedAdjustments, &e.Status, &e.DecidedAt, &e.CreatedAt,
	); err != nil {
		return err
	}
	if categoryIDs == nil {
		categoryIDs = []int64{}
	}
	e.EligibleCategoryIDs = categoryIDs
	return nil
}

// Create inserts a pending evaluation; the sequence is assigned by the database
func (r *evaluationRepo) Create(ctx context.Context, e *domain.MedicalEvaluation) error {
	query := `
		INSERT INTO medical_evaluations (id, posting_id, doctor_id, eligible_category_ids, notes,
			recommended_adjustments, status, decided_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.EligibleCategoryIDs == nil {
		e.EligibleCategoryIDs = []int64{}
	}

	err := conn(ctx, r.db).QueryRow(ctx, query,
		e.ID, e.PostingID, e.DoctorID, pq.Array(e.EligibleCategoryIDs), e.Notes,
		e.RecommendedAdjustments, e.Status, e.DecidedAt, e.CreatedAt,
	).Scan(&e.Sequence)
	return mapError(err, "Evaluation already exists")
}

func (r *evaluationRepo) latest(ctx context.Context, postingID uuid.UUID, suffix string) (*domain.MedicalEvaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM medical_evaluations
		WHERE posting_id = $1
		ORDER BY seq DESC
		LIMIT 1` + suffix

	var e domain.MedicalEvaluation
	if err := scanEvaluation(conn(ctx, r.db).QueryRow(ctx, query, postingID), &e); err != nil {
		return nil, mapError(err, "")
	}
	return &e, nil
}

// Latest returns the evaluation with the greatest sequence
func (r *evaluationRepo) Latest(ctx context.Context, postingID uuid.UUID) (*domain.MedicalEvaluation, error) {
	return r.latest(ctx, postingID, "")
}

// LatestForUpdate returns the latest evaluation and locks its row
func (r *evaluationRepo) LatestForUpdate(ctx context.Context, postingID uuid.UUID) (*domain.MedicalEvaluation, error) {
	return r.latest(ctx, postingID, " FOR UPDATE")
}

// LatestApproved returns the approved evaluation with the greatest sequence
func (r *evaluationRepo) LatestApproved(ctx context.Context, postingID uuid.UUID) (*domain.MedicalEvaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM medical_evaluations
		WHERE posting_id = $1 AND status = 'approved'
		ORDER BY seq DESC
		LIMIT 1`

	var e domain.MedicalEvaluation
	if err := scanEvaluation(conn(ctx, r.db).QueryRow(ctx, query, postingID), &e); err != nil {
		return nil, mapError(err, "")
	}
	return &e, nil
}

// SaveDecision records a doctor's decision on a pending evaluation. Rows
// already decided are left untouched and reported as not found.
func (r *evaluationRepo) SaveDecision(ctx context.Context, e *domain.MedicalEvaluation) error {
	query := `
		UPDATE medical_evaluations SET
			doctor_id = $2, eligible_category_ids = $3, notes = $4,
			recommended_adjustments = $5, status = $6, decided_at = $7
		WHERE id = $1 AND status = 'pending'`

	result, err := conn(ctx, r.db).Exec(ctx, query,
		e.ID, e.DoctorID, pq.Array(e.EligibleCategoryIDs), e.Notes,
		e.RecommendedAdjustments, e.Status, e.DecidedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByPosting returns every evaluation of a posting, newest first
func (r *evaluationRepo) ListByPosting(ctx context.Context, postingID uuid.UUID) ([]domain.MedicalEvaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM medical_evaluations
		WHERE posting_id = $1
		ORDER BY seq DESC`

	rows, err := conn(ctx, r.db).Query(ctx, query, postingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evaluations := []domain.MedicalEvaluation{}
	for rows.Next() {
		var e domain.MedicalEvaluation
		if err := scanEvaluation(rows, &e); err != nil {
			return nil, err
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, rows.Err()
}

// DoctorStats aggregates a doctor's decisions since the given time
func (r *evaluationRepo) DoctorStats(ctx context.Context, doctorID uuid.UUID, since time.Time) (*domain.DoctorStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE e.status = 'approved'),
			COUNT(*) FILTER (WHERE e.status = 'rejected'),
			COUNT(*) FILTER (WHERE e.status = 'adjustments_needed'),
			AVG(EXTRACT(EPOCH FROM (e.decided_at - p.created_at)) / 3600.0)::float8
		FROM medical_evaluations e
		JOIN postings p ON p.id = e.posting_id
		WHERE e.doctor_id = $1 AND e.decided_at >= $2`

	q := conn(ctx, r.db)
	stats := &domain.DoctorStats{Since: since}
	if err := q.QueryRow(ctx, query, doctorID, since).Scan(
		&stats.Total, &stats.Approved, &stats.Rejected, &stats.AdjustmentsNeeded, &stats.AvgHoursToDecision,
	); err != nil {
		return nil, err
	}

	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM postings WHERE status = 'pending_review'`,
	).Scan(&stats.PendingQueue); err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.ApprovalRate = float64(stats.Approved) / float64(stats.Total) * 100
	}
	return stats, nil
}

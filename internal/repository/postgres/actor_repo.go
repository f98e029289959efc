package postgres

import (
	"context"

	"pcd-jobs-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type actorRepo struct {
	db *pgxpool.Pool
}

// NewActorRepository loads request actors from the users table
func NewActorRepository(db *pgxpool.Pool) domain.ActorRepository {
	return &actorRepo{db: db}
}

// GetActor returns the user with its role and, for candidates, the
// declared disability categories
func (r *actorRepo) GetActor(ctx context.Context, id uuid.UUID) (*domain.Actor, error) {
	query := `
		SELECT u.id, u.email, u.role,
			COALESCE(ARRAY(SELECT cc.category_id FROM candidate_categories cc
				WHERE cc.user_id = u.id ORDER BY cc.category_id), '{}')
		FROM users u
		WHERE u.id = $1`

	var (
		actor       domain.Actor
		role        string
		categoryIDs []int64
	)
	if err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&actor.ID, &actor.Email, &role, pq.Array(&categoryIDs),
	); err != nil {
		return nil, mapError(err, "")
	}

	actor.Role = domain.ParseRole(role)
	if actor.Is(domain.RoleCandidate) {
		actor.CategoryIDs = categoryIDs
	}
	return &actor, nil
}

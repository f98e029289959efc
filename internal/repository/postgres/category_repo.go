package postgres

import (
	"context"

	"pcd-jobs-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type categoryRepo struct {
	db *pgxpool.Pool
}

// NewCategoryRepository creates a repository over the disability category
// and accessibility resource vocabularies
func NewCategoryRepository(db *pgxpool.Pool) domain.CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) categories(ctx context.Context, query string, args ...any) ([]domain.DisabilityCategory, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.DisabilityCategory{}
	for rows.Next() {
		var c domain.DisabilityCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) resources(ctx context.Context, query string, args ...any) ([]domain.AccessibilityResource, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := []domain.AccessibilityResource{}
	for rows.Next() {
		var res domain.AccessibilityResource
		if err := rows.Scan(&res.ID, &res.Name, &res.Icon, &res.Description); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *categoryRepo) ListCategories(ctx context.Context) ([]domain.DisabilityCategory, error) {
	return r.categories(ctx, `SELECT id, name, description FROM disability_categories ORDER BY name`)
}

func (r *categoryRepo) ListResources(ctx context.Context) ([]domain.AccessibilityResource, error) {
	return r.resources(ctx, `SELECT id, name, icon, description FROM accessibility_resources ORDER BY name`)
}

func (r *categoryRepo) GetCategoriesByIDs(ctx context.Context, ids []int64) ([]domain.DisabilityCategory, error) {
	if len(ids) == 0 {
		return []domain.DisabilityCategory{}, nil
	}
	return r.categories(ctx,
		`SELECT id, name, description FROM disability_categories WHERE id = ANY($1::bigint[]) ORDER BY name`,
		pq.Array(ids),
	)
}

func (r *categoryRepo) GetResourcesByIDs(ctx context.Context, ids []int64) ([]domain.AccessibilityResource, error) {
	if len(ids) == 0 {
		return []domain.AccessibilityResource{}, nil
	}
	return r.resources(ctx,
		`SELECT id, name, icon, description FROM accessibility_resources WHERE id = ANY($1::bigint[]) ORDER BY name`,
		pq.Array(ids),
	)
}

package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/apperror"
)

type categoryUsecase struct {
	repo domain.CategoryRepository
}

// NewCategoryUsecase creates the category registry
func NewCategoryUsecase(repo domain.CategoryRepository) domain.CategoryUsecase {
	return &categoryUsecase{repo: repo}
}

func (u *categoryUsecase) ListCategories(ctx context.Context) ([]domain.DisabilityCategory, error) {
	categories, err := u.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return categories, nil
}

func (u *categoryUsecase) ListResources(ctx context.Context) ([]domain.AccessibilityResource, error) {
	resources, err := u.repo.ListResources(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return resources, nil
}

// ResolveCategories returns the categories for ids, failing if any is unknown
func (u *categoryUsecase) ResolveCategories(ctx context.Context, ids []int64) ([]domain.DisabilityCategory, error) {
	ids = domain.UniqueIDs(ids)
	if len(ids) == 0 {
		return []domain.DisabilityCategory{}, nil
	}

	categories, err := u.repo.GetCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	found := make([]int64, 0, len(categories))
	for _, c := range categories {
		found = append(found, c.ID)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, apperror.NotFound("Unknown disability categories: " + formatIDs(missing))
	}
	return categories, nil
}

// ResolveResources returns the accessibility resources for ids, failing if any is unknown
func (u *categoryUsecase) ResolveResources(ctx context.Context, ids []int64) ([]domain.AccessibilityResource, error) {
	ids = domain.UniqueIDs(ids)
	if len(ids) == 0 {
		return []domain.AccessibilityResource{}, nil
	}

	resources, err := u.repo.GetResourcesByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	found := make([]int64, 0, len(resources))
	for _, r := range resources {
		found = append(found, r.ID)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, apperror.NotFound("Unknown accessibility resources: " + formatIDs(missing))
	}
	return resources, nil
}

func missingIDs(want, found []int64) []int64 {
	have := make(map[int64]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

package domain

import "context"

// DisabilityCategory is an entry of the fixed disability vocabulary.
type DisabilityCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AccessibilityResource is an accommodation a posting can advertise
// (ramp, sign-language interpreter, screen reader...).
type AccessibilityResource struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description"`
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]DisabilityCategory, error)
	ListResources(ctx context.Context) ([]AccessibilityResource, error)
	GetCategoriesByIDs(ctx context.Context, ids []int64) ([]DisabilityCategory, error)
	GetResourcesByIDs(ctx context.Context, ids []int64) ([]AccessibilityResource, error)
}

type CategoryUsecase interface {
	ListCategories(ctx context.Context) ([]DisabilityCategory, error)
	ListResources(ctx context.Context) ([]AccessibilityResource, error)
	// ResolveCategories fails with a not_found error if any id is unknown.
	ResolveCategories(ctx context.Context, ids []int64) ([]DisabilityCategory, error)
	ResolveResources(ctx context.Context, ids []int64) ([]AccessibilityResource, error)
}

// UniqueIDs returns ids without duplicates, keeping first-seen order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Intersect returns the ids present in both sets, in the order of a.
func Intersect(a, b []int64) []int64 {
	set := make(map[int64]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	var out []int64
	for _, id := range UniqueIDs(a) {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

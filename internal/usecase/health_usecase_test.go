package usecase_test

import (
	"context"
	"errors"
	"testing"

	"pcd-jobs-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestHealthUsecase(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("Should be healthy when every probe passes", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthProbe{"database": up, "redis": nil})
		status := uc.Check(context.Background())
		assert.Equal(t, "up", status["database"])
		assert.Equal(t, "disabled", status["redis"])
		assert.True(t, uc.Healthy(status))
	})

	t.Run("Should degrade when a probe fails", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthProbe{"database": down, "redis": up})
		status := uc.Check(context.Background())
		assert.Equal(t, "down", status["database"])
		assert.Equal(t, "degraded", status["status"])
		assert.False(t, uc.Healthy(status))
	})
}

func TestCategoryUsecase_Resolve(t *testing.T) {
	s := newMemStore()
	uc := usecase.NewCategoryUsecase(memCategories{s})
	ctx := context.Background()

	categories, err := uc.ResolveCategories(ctx, []int64{2, 1, 2})
	assert.NoError(t, err)
	assert.Len(t, categories, 2)

	empty, err := uc.ResolveResources(ctx, nil)
	assert.NoError(t, err)
	assert.Empty(t, empty)

	_, err = uc.ResolveCategories(ctx, []int64{7, 1, 5})
	assert.EqualError(t, err, "Unknown disability categories: 5, 7")
}

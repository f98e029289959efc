package rediscache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/internal/repository/rediscache"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) ListCategories(ctx context.Context) ([]domain.DisabilityCategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.DisabilityCategory), args.Error(1)
}

func (m *MockCategoryRepo) ListResources(ctx context.Context) ([]domain.AccessibilityResource, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AccessibilityResource), args.Error(1)
}

func (m *MockCategoryRepo) GetCategoriesByIDs(ctx context.Context, ids []int64) ([]domain.DisabilityCategory, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.DisabilityCategory), args.Error(1)
}

func (m *MockCategoryRepo) GetResourcesByIDs(ctx context.Context, ids []int64) ([]domain.AccessibilityResource, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.AccessibilityResource), args.Error(1)
}

// memRedis implements the two commands the cache uses; any other call
// panics through the nil embedded interface.
type memRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
	down bool
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (r *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if r.down {
		return redis.NewStringResult("", errors.New("dial tcp: connection refused"))
	}
	v, ok := r.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (r *memRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if r.down {
		return redis.NewStatusResult("", errors.New("dial tcp: connection refused"))
	}
	switch v := value.(type) {
	case []byte:
		r.data[key] = string(v)
	case string:
		r.data[key] = v
	}
	r.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

var categories = []domain.DisabilityCategory{{ID: 1, Name: "Física"}, {ID: 2, Name: "Visual"}}

func TestCategoryCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepo)
	repo.On("ListCategories", mock.Anything).Return(categories, nil).Once()
	client := newMemRedis()
	cache := rediscache.NewCategoryCache(repo, client, time.Minute)

	first, err := cache.ListCategories(ctx)
	require.NoError(t, err)
	second, err := cache.ListCategories(ctx)
	require.NoError(t, err)

	assert.Equal(t, categories, first)
	assert.Equal(t, categories, second)
	repo.AssertNumberOfCalls(t, "ListCategories", 1)
	assert.Len(t, client.data, 1)
	for _, ttl := range client.ttl {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestCategoryCache_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepo)
	repo.On("ListCategories", mock.Anything).Return(categories, nil)
	client := newMemRedis()
	client.down = true
	cache := rediscache.NewCategoryCache(repo, client, 0)

	for i := 0; i < 2; i++ {
		got, err := cache.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, categories, got)
	}
	repo.AssertNumberOfCalls(t, "ListCategories", 2)
}

func TestCategoryCache_IgnoresCorruptEntries(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepo)
	resources := []domain.AccessibilityResource{{ID: 10, Name: "Rampa"}}
	repo.On("ListResources", mock.Anything).Return(resources, nil)
	client := newMemRedis()
	client.data["pcdjobs:resources:v1"] = "{not json"
	cache := rediscache.NewCategoryCache(repo, client, time.Minute)

	got, err := cache.ListResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, resources, got)
	assert.JSONEq(t, `[{"id":10,"name":"Rampa","description":""}]`, client.data["pcdjobs:resources:v1"])
}

func TestCategoryCache_LookupsByIDBypassCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepo)
	repo.On("GetCategoriesByIDs", mock.Anything, []int64{2}).Return(categories[1:], nil)
	cache := rediscache.NewCategoryCache(repo, newMemRedis(), time.Minute)

	got, err := cache.GetCategoriesByIDs(ctx, []int64{2})
	require.NoError(t, err)
	assert.Equal(t, categories[1:], got)
	repo.AssertExpectations(t)
}

func TestCategoryCache_PropagatesStoreErrors(t *testing.T) {
	repo := new(MockCategoryRepo)
	repo.On("ListCategories", mock.Anything).Return([]domain.DisabilityCategory(nil), errors.New("db down"))
	client := newMemRedis()
	cache := rediscache.NewCategoryCache(repo, client, time.Minute)

	_, err := cache.ListCategories(context.Background())
	assert.EqualError(t, err, "db down")
	assert.Empty(t, client.data)
}

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esouk/onboarding/pkg/backend"
	"github.com/esouk/onboarding/pkg/validation"
)

func ptr[T any](v T) *T { return &v }

func TestProductFilters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filters ProductFilters
		field   string
	}{
		{"inverted price range", ProductFilters{PriceMin: ptr(50.0), PriceMax: ptr(10.0)}, "priceMin"},
		{"negative page", ProductFilters{Page: ptr(-1)}, "page"},
		{"page size zero", ProductFilters{PageSize: ptr(0)}, "pageSize"},
		{"page size too large", ProductFilters{PageSize: ptr(101)}, "pageSize"},
		{"negative price", ProductFilters{PriceMax: ptr(-3.0)}, "priceMax"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			require.ErrorIs(t, err, ErrInvalidFilters)
			var fields validation.FieldErrors
			require.ErrorAs(t, err, &fields)
			assert.Contains(t, fields, tt.field)
		})
	}

	assert.NoError(t, ProductFilters{PriceMin: ptr(10.0), PriceMax: ptr(10.0), Page: ptr(0), PageSize: ptr(100)}.Validate())
	assert.NoError(t, ProductFilters{}.Validate())
}

func TestProductFilters_Query(t *testing.T) {
	f := ProductFilters{CategoryName: " Home ", PriceMin: ptr(5.5), SearchKeyword: "mug", Page: ptr(0), PageSize: ptr(20)}
	assert.Equal(t, "categoryName=Home&page=0&pageSize=20&priceMin=5.5&searchKeyword=mug", f.Query().Encode())
	assert.Empty(t, ProductFilters{}.Query())
}

func TestShopFilters(t *testing.T) {
	assert.ErrorIs(t, ShopFilters{PageSize: ptr(500)}.Validate(), ErrInvalidFilters)
	assert.Equal(t, "address=Tunis&sortBy=rating", ShopFilters{Address: "Tunis", SortBy: "rating"}.Query().Encode())
}

func newBackend(t *testing.T, hits *atomic.Int32) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products":
			_, _ = w.Write([]byte(`{"content":[{"id":"p1","name":"Mug","price":12.5,"categoryName":"Home","shopName":"Atlas"}],"totalElements":1,"totalPages":1,"size":20,"number":0,"first":true,"last":true,"numberOfElements":1,"empty":false}`))
		case "/shops/all":
			_, _ = w.Write([]byte(`{"content":[{"id":"s1","brandName":"Atlas","rating":4.5}],"totalElements":1,"totalPages":1,"size":20,"number":0,"first":true,"last":true,"numberOfElements":1,"empty":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return backend.NewClient("catalog", backend.Config{BaseURL: srv.URL})
}

func TestService_SearchUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	var hits atomic.Int32
	svc := NewService(newBackend(t, &hits), NewRedisCache(rdb), time.Minute)
	ctx := context.Background()

	page, err := svc.SearchProducts(ctx, ProductFilters{CategoryName: "Home"})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Mug", page.Content[0].Name)

	again, err := svc.SearchProducts(ctx, ProductFilters{CategoryName: " Home"})
	require.NoError(t, err)
	assert.Equal(t, page, again)
	assert.EqualValues(t, 1, hits.Load())
	assert.True(t, mr.Exists("catalog:products:categoryName=Home"))

	shops, err := svc.SearchShops(ctx, ShopFilters{})
	require.NoError(t, err)
	assert.Equal(t, 4.5, shops.Content[0].Rating)
	assert.EqualValues(t, 2, hits.Load())
}

func TestService_InvalidFiltersSkipBackend(t *testing.T) {
	var hits atomic.Int32
	svc := NewService(newBackend(t, &hits), nil, 0)

	_, err := svc.SearchProducts(context.Background(), ProductFilters{PriceMin: ptr(9.0), PriceMax: ptr(1.0)})
	assert.ErrorIs(t, err, ErrInvalidFilters)
	assert.Zero(t, hits.Load())
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func TestService_CacheFailuresFallThrough(t *testing.T) {
	var hits atomic.Int32
	svc := NewService(newBackend(t, &hits), brokenCache{}, time.Minute)

	page, err := svc.SearchShops(context.Background(), ShopFilters{})
	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
	assert.EqualValues(t, 1, hits.Load())
}

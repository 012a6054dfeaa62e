package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/esouk/onboarding/pkg/backend"
	"github.com/esouk/onboarding/pkg/logger"
)

var cacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Catalog cache lookups by listing and result",
	},
	[]string{"listing", "result"},
)

func init() {
	prometheus.MustRegister(cacheLookups)
}

// Service lists products and shops from the backend. A nil cache disables
// caching.
type Service struct {
	api   *backend.Client
	cache Cache
	ttl   time.Duration
}

func NewService(api *backend.Client, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{api: api, cache: cache, ttl: ttl}
}

// SearchProducts lists products matching f through GET /products
func (s *Service) SearchProducts(ctx context.Context, f ProductFilters) (*Page[Product], error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var page Page[Product]
	if err := s.list(ctx, "products", "/products", f.Query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchShops lists shops matching f through GET /shops/all
func (s *Service) SearchShops(ctx context.Context, f ShopFilters) (*Page[Shop], error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var page Page[Shop]
	if err := s.list(ctx, "shops", "/shops/all", f.Query(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) list(ctx context.Context, listing, path string, q url.Values, out any) error {
	key := cacheKey(listing, q)

	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn(ctx).Err(err).Str("key", key).Msg("Catalog cache read failed")
		case ok && json.Unmarshal(raw, out) == nil:
			cacheLookups.WithLabelValues(listing, "hit").Inc()
			return nil
		}
		cacheLookups.WithLabelValues(listing, "miss").Inc()
	}

	if err := s.api.Do(ctx, backend.Request{Method: http.MethodGet, Path: path, Query: q}, out); err != nil {
		return err
	}

	if s.cache != nil {
		raw, err := json.Marshal(out)
		if err == nil {
			err = s.cache.Set(ctx, key, raw, s.ttl)
		}
		if err != nil {
			logger.Warn(ctx).Err(err).Str("key", key).Msg("Catalog cache write failed")
		}
	}
	return nil
}

package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/core/ports"
	"github.com/voyago/voyago/internal/pkg/metrics"
)

// CatalogService serves the candidate-activity catalog that the
// activity-listing and search collaborators draw from.
type CatalogService struct {
	places ports.PlaceRepository
	cache  ports.CacheService
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(places ports.PlaceRepository, cache ports.CacheService) *CatalogService {
	return &CatalogService{places: places, cache: cache}
}

// ListByCategory returns candidate activities in one category,
// optionally ordered by distance from a point.
func (s *CatalogService) ListByCategory(ctx context.Context, category string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
	if category == "" {
		return nil, fmt.Errorf("category must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("catalog:category:%s:%d", category, limit)
	if near == nil {
		if places, ok := s.cached(ctx, cacheKey); ok {
			return places, nil
		}
	}

	places, err := s.places.ListByCategory(ctx, category, near, limit)
	if err != nil {
		return nil, err
	}

	// Location-independent listings are stable enough to cache.
	if near == nil {
		s.store(ctx, cacheKey, places, 300)
	}
	return places, nil
}

// Search performs name search over the catalog.
func (s *CatalogService) Search(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("catalog:search:%s:%d", query, limit)
	if places, ok := s.cached(ctx, cacheKey); ok {
		return places, nil
	}

	places, err := s.places.Search(ctx, query, near, limit)
	if err != nil {
		return nil, err
	}

	s.store(ctx, cacheKey, places, 300)
	return places, nil
}

// FindNearby returns places within radiusMeters of the given point.
func (s *CatalogService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Place, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("catalog:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if places, ok := s.cached(ctx, cacheKey); ok {
		return places, nil
	}

	places, err := s.places.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	s.store(ctx, cacheKey, places, 300)
	return places, nil
}

// GetByID returns a single catalog place.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	return s.places.GetByID(ctx, id)
}

// Categories lists the distinct activity categories.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.places.Categories(ctx)
}

func (s *CatalogService) cached(ctx context.Context, key string) ([]domain.Place, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("catalog").Inc()
		return nil, false
	}
	var places []domain.Place
	if err := json.Unmarshal(data, &places); err != nil {
		metrics.CacheMisses.WithLabelValues("catalog").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("catalog").Inc()
	return places, true
}

func (s *CatalogService) store(ctx context.Context, key string, places []domain.Place, ttlSeconds int) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(places); err == nil {
		_ = s.cache.Set(ctx, key, data, ttlSeconds)
	}
}

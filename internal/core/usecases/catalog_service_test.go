package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/core/usecases"
)

// --- Mock PlaceRepository ---

type mockPlaceRepo struct {
	listByCategoryFn func(ctx context.Context, category string, near *domain.GeoPoint, limit int) ([]domain.Place, error)
	searchFn         func(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Place, error)
	findNearbyFn     func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Place, error)
	categoriesFn     func(ctx context.Context) ([]string, error)
}

func (m *mockPlaceRepo) Upsert(ctx context.Context, p *domain.Place) error        { return nil }
func (m *mockPlaceRepo) UpsertBatch(ctx context.Context, ps []domain.Place) error { return nil }
func (m *mockPlaceRepo) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	return nil, errors.New("not found")
}

func (m *mockPlaceRepo) ListByCategory(ctx context.Context, category string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, category, near, limit)
	}
	return nil, nil
}

func (m *mockPlaceRepo) Search(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, near, limit)
	}
	return nil, nil
}

func (m *mockPlaceRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Place, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

func (m *mockPlaceRepo) Categories(ctx context.Context) ([]string, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Tests ---

func TestCatalogService_ListByCategoryCachesResults(t *testing.T) {
	calls := 0
	repo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
			calls++
			return []domain.Place{place("p-1", "Guggenheim", 43.268, -2.934)}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewCatalogService(repo, cache)

	for i := 0; i < 3; i++ {
		places, err := svc.ListByCategory(context.Background(), "museums", nil, 50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(places) != 1 || places[0].ID != "p-1" {
			t.Fatalf("unexpected result: %+v", places)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 repo call with a warm cache, got %d", calls)
	}
	if cache.sets != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.sets)
	}
}

func TestCatalogService_ListByCategoryNearBypassesCache(t *testing.T) {
	calls := 0
	repo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
			calls++
			return nil, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewCatalogService(repo, cache)

	near := &domain.GeoPoint{Lat: 43.26, Lon: -2.93}
	for i := 0; i < 2; i++ {
		if _, err := svc.ListByCategory(context.Background(), "museums", near, 50); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("location-dependent listings must not be cached, got %d calls", calls)
	}
	if cache.sets != 0 {
		t.Errorf("expected no cache writes, got %d", cache.sets)
	}
}

func TestCatalogService_ListByCategoryEmptyCategory(t *testing.T) {
	svc := usecases.NewCatalogService(&mockPlaceRepo{}, nil)
	if _, err := svc.ListByCategory(context.Background(), "", nil, 10); err == nil {
		t.Fatal("expected an error for an empty category")
	}
}

func TestCatalogService_SearchClampsLimit(t *testing.T) {
	repo := &mockPlaceRepo{
		searchFn: func(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
			if limit != 20 {
				t.Errorf("expected limit clamped to 20, got %d", limit)
			}
			return nil, nil
		},
	}
	svc := usecases.NewCatalogService(repo, nil)
	if _, err := svc.Search(context.Background(), "museo", nil, 999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCatalogService_SearchEmptyQuery(t *testing.T) {
	svc := usecases.NewCatalogService(&mockPlaceRepo{}, nil)
	if _, err := svc.Search(context.Background(), "", nil, 10); err == nil {
		t.Fatal("expected an error for an empty query")
	}
}

func TestCatalogService_FindNearbyWorksWithoutCache(t *testing.T) {
	repo := &mockPlaceRepo{
		findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Place, error) {
			return []domain.Place{place("p-1", "Guggenheim", 43.268, -2.934)}, nil
		},
	}
	svc := usecases.NewCatalogService(repo, nil)

	places, err := svc.FindNearby(context.Background(), 43.26, -2.93, 1000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
}

func TestCatalogService_RepoErrorPropagates(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &mockPlaceRepo{
		listByCategoryFn: func(ctx context.Context, category string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
			return nil, repoErr
		},
	}
	svc := usecases.NewCatalogService(repo, newMockCache())

	if _, err := svc.ListByCategory(context.Background(), "museums", nil, 10); !errors.Is(err, repoErr) {
		t.Fatalf("expected the repo error, got %v", err)
	}
}

package ports

import (
	"context"

	"github.com/voyago/voyago/internal/core/domain"
)

// PlaceRepository persists the catalog of candidate activity places.
type PlaceRepository interface {
	Upsert(ctx context.Context, place *domain.Place) error
	UpsertBatch(ctx context.Context, places []domain.Place) error
	GetByID(ctx context.Context, id string) (*domain.Place, error)
	ListByCategory(ctx context.Context, category string, near *domain.GeoPoint, limit int) ([]domain.Place, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Place, error)
	Search(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Place, error)
	Categories(ctx context.Context) ([]string, error)
}

// AssignmentRepository persists the audit log of plan assignments.
type AssignmentRepository interface {
	Insert(ctx context.Context, a *domain.PlanAssignment) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.PlanAssignment, error)
}

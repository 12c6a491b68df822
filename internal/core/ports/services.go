package ports

import (
	"context"

	"github.com/voyago/voyago/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishFocusChange(ctx context.Context, fc *domain.FocusChange) error
	PublishAssignment(ctx context.Context, a *domain.PlanAssignment) error
	PublishSyncFailure(ctx context.Context, a *domain.PlanAssignment) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeAssignments(ctx context.Context, handler func(ctx context.Context, a *domain.PlanAssignment) error) error
	SubscribeSyncFailures(ctx context.Context, handler func(ctx context.Context, a *domain.PlanAssignment) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// BootstrapStore holds the persisted home-location fields read once at
// session start. Values are raw strings: latitude and longitude as
// decimal text, the viewport as a serialized rectangle.
type BootstrapStore interface {
	LoadHome(ctx context.Context, userID string) (map[string]string, error)
	SaveHome(ctx context.Context, userID string, fields map[string]string) error
	ClearHome(ctx context.Context, userID string) error
}

// PlanSyncer propagates a plan assignment to the remote plan store.
// Any 2xx-equivalent status is success; anything else is an error.
type PlanSyncer interface {
	UpsertAssignment(ctx context.Context, a *domain.PlanAssignment) error
}

package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/core/ports"
	"github.com/voyago/voyago/internal/pkg/metrics"
)

// PlanService is the daily-plan aggregator: it records activity
// assignments per date, enforces no-duplicate-per-date, and propagates
// each addition to the remote plan store.
type PlanService struct {
	syncer    ports.PlanSyncer
	publisher ports.EventPublisher
}

// NewPlanService creates a new PlanService. Both collaborators may be
// nil; assignments are then local only.
func NewPlanService(syncer ports.PlanSyncer, publisher ports.EventPublisher) *PlanService {
	return &PlanService{syncer: syncer, publisher: publisher}
}

// Assign records the activity under the session's currently selected
// date. No selected date, or an activity already present on that date,
// is a no-op. The local append commits before the remote sync request
// is issued; a failed sync is reported but never rolls the local state
// back, so calling Assign twice with the same arguments always equals
// calling it once.
//
// Caller must hold the session lock.
func (s *PlanService) Assign(ctx context.Context, sess *domain.Session, place domain.Place) (bool, error) {
	dateKey := sess.SelectedDate
	if dateKey == "" {
		slog.DebugContext(ctx, "assign with no selected date", "session_id", sess.ID, "place_id", place.ID)
		return false, nil
	}
	if sess.Plan.Contains(dateKey, place.ID) {
		return false, nil
	}

	sess.Plan[dateKey] = append(sess.Plan[dateKey], place)
	metrics.PlanAssignments.Inc()

	a := &domain.PlanAssignment{
		UserID:     sess.UserID,
		PlaceID:    place.ID,
		DateKey:    dateKey,
		SessionID:  sess.ID,
		PlaceName:  place.Name,
		AssignedAt: time.Now(),
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAssignment(ctx, a); err != nil {
			slog.WarnContext(ctx, "publish assignment", "error", err)
		}
	}

	if s.syncer != nil {
		if err := s.syncer.UpsertAssignment(ctx, a); err != nil {
			metrics.PlanSyncFailures.Inc()
			slog.WarnContext(ctx, "plan sync failed, local state kept",
				"session_id", sess.ID,
				"place_id", place.ID,
				"daily_plan_id", dateKey,
				"error", err)
			if s.publisher != nil {
				_ = s.publisher.PublishSyncFailure(ctx, a)
			}
			return true, fmt.Errorf("sync assignment: %w", err)
		}
	}
	return true, nil
}

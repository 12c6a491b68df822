package usecases

import (
	"context"
	"log/slog"

	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/core/ports"
	"github.com/voyago/voyago/internal/pkg/metrics"
)

// FocusResolver decides which single place the map should currently
// center on. Every user action enqueues one FocusEvent on the session;
// Evaluate drains the batch and lets exactly one signal win, in fixed
// priority order: home changed, search selected, activity selected,
// explicit home request. This keeps the map from receiving two
// contradictory focus instructions for one user action.
type FocusResolver struct {
	publisher ports.EventPublisher
}

// NewFocusResolver creates a new FocusResolver. The publisher may be
// nil; focus changes are then only applied locally.
func NewFocusResolver(publisher ports.EventPublisher) *FocusResolver {
	return &FocusResolver{publisher: publisher}
}

// Evaluate consumes the session's pending events and produces at most
// one focus instruction. Signal state (home, search selection) is
// updated for every event in arrival order; only the winning event
// moves the focus. Returns nil when nothing changed.
//
// Caller must hold the session lock.
func (r *FocusResolver) Evaluate(ctx context.Context, sess *domain.Session) *domain.FocusChange {
	evs := sess.DrainEvents()
	if len(evs) == 0 {
		return nil
	}

	// Apply state updates in arrival order; track the winner. Lower
	// kind wins; among equals the later event carries the newer value.
	var winner *domain.FocusEvent
	for i := range evs {
		ev := &evs[i]
		switch ev.Kind {
		case domain.FocusHomeChanged:
			sess.Home = ev.Place
		case domain.FocusSearchSelected:
			sess.Searched = ev.Place
		}
		if winner == nil || ev.Kind <= winner.Kind {
			winner = ev
		}
	}

	var target *domain.Place
	switch winner.Kind {
	case domain.FocusHomeChanged, domain.FocusSearchSelected:
		// A cleared value changes the signal but moves nothing.
		target = winner.Place

	case domain.FocusActivitySelected:
		// Late resolution against the current group store. A stale
		// reference is silent: the selection is consumed either way.
		if place, ok := winner.Ref.Resolve(sess.Groups); ok {
			target = &place
		} else {
			metrics.StaleSelections.Inc()
			slog.DebugContext(ctx, "stale activity selection",
				"session_id", sess.ID,
				"group_id", winner.Ref.GroupID,
				"index", winner.Ref.Index)
		}

	case domain.FocusHomeRequested:
		target = sess.Home
	}

	if target == nil {
		return nil
	}

	sess.FocusTarget = target
	metrics.FocusResolutions.WithLabelValues(winner.Kind.String()).Inc()

	fc := &domain.FocusChange{
		SessionID: sess.ID,
		Signal:    winner.Kind.String(),
		Target:    *target,
	}
	if r.publisher != nil {
		if err := r.publisher.PublishFocusChange(ctx, fc); err != nil {
			slog.WarnContext(ctx, "publish focus change", "error", err)
		}
	}
	return fc
}

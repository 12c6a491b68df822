package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/core/ports"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Bootstrap field keys persisted for the home location.
const (
	bootstrapName     = "name"
	bootstrapAddress  = "address"
	bootstrapPlaceID  = "place_id"
	bootstrapLat      = "lat"
	bootstrapLng      = "lng"
	bootstrapViewport = "viewport"
)

// SessionService owns the live planning sessions. Every collaborator
// action arrives here, is turned into a focus event or plan command,
// and is evaluated to completion under the session lock before the
// next event for that session is processed.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	bootstrap ports.BootstrapStore
	resolver  *FocusResolver
	plans     *PlanService
}

// NewSessionService creates a new SessionService.
func NewSessionService(bootstrap ports.BootstrapStore, resolver *FocusResolver, plans *PlanService) *SessionService {
	return &SessionService{
		sessions:  make(map[string]*domain.Session),
		bootstrap: bootstrap,
		resolver:  resolver,
		plans:     plans,
	}
}

// Open creates a session, seeding the home signal from the bootstrap
// store when a prior home location was persisted for the user.
func (s *SessionService) Open(ctx context.Context, userID string) (*domain.Session, error) {
	sess := domain.NewSession(uuid.NewString(), userID)

	if s.bootstrap != nil {
		home, err := s.loadBootstrapHome(ctx, userID)
		if err != nil {
			return nil, err
		}
		if home != nil {
			sess.Home = home
			sess.FocusTarget = home
		}
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.InfoContext(ctx, "session opened", "session_id", sess.ID, "user_id", userID, "bootstrapped", sess.Home != nil)
	return sess, nil
}

// Get returns a live session by ID.
func (s *SessionService) Get(id string) (*domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SetHome replaces the home location and persists it for future
// bootstraps. A nil place clears home.
func (s *SessionService) SetHome(ctx context.Context, id string, place *domain.Place) (*domain.FocusChange, error) {
	fc, err := s.dispatch(ctx, id, domain.FocusEvent{Kind: domain.FocusHomeChanged, Place: place})
	if err != nil {
		return nil, err
	}

	if s.bootstrap != nil {
		sess, _ := s.Get(id)
		if place == nil {
			if err := s.bootstrap.ClearHome(ctx, sess.UserID); err != nil {
				slog.WarnContext(ctx, "clear bootstrap home", "error", err)
			}
		} else if err := s.bootstrap.SaveHome(ctx, sess.UserID, bootstrapFields(place)); err != nil {
			slog.WarnContext(ctx, "save bootstrap home", "error", err)
		}
	}
	return fc, nil
}

// SelectSearchResult records a place chosen in the search collaborator.
func (s *SessionService) SelectSearchResult(ctx context.Context, id string, place *domain.Place) (*domain.FocusChange, error) {
	return s.dispatch(ctx, id, domain.FocusEvent{Kind: domain.FocusSearchSelected, Place: place})
}

// SelectActivity records a positional activity selection raised by the
// map or listing collaborator.
func (s *SessionService) SelectActivity(ctx context.Context, id string, ref domain.SelectionRef) (*domain.FocusChange, error) {
	return s.dispatch(ctx, id, domain.FocusEvent{Kind: domain.FocusActivitySelected, Ref: ref})
}

// RequestHomeFocus handles an explicit "show home" request.
func (s *SessionService) RequestHomeFocus(ctx context.Context, id string) (*domain.FocusChange, error) {
	return s.dispatch(ctx, id, domain.FocusEvent{Kind: domain.FocusHomeRequested})
}

// ReplaceGroup swaps the contents of one activity group. The
// activity-selection collaborator owns group contents; the core only
// reads them, so stale selection references are handled at resolution
// time, not here.
func (s *SessionService) ReplaceGroup(ctx context.Context, id, groupID string, places []domain.Place) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Groups[groupID] = places
	if _, ok := sess.OpenGroups[groupID]; !ok {
		sess.OpenGroups[groupID] = false
	}
	return nil
}

// SetGroupOpen toggles a group's open/closed state.
func (s *SessionService) SetGroupOpen(ctx context.Context, id, groupID string, open bool) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	if _, ok := sess.Groups[groupID]; !ok {
		return fmt.Errorf("unknown group %q", groupID)
	}
	sess.OpenGroups[groupID] = open
	return nil
}

// SetDates replaces the tracked dates and the selected date. Both are
// owned by the date-list collaborator.
func (s *SessionService) SetDates(ctx context.Context, id string, dates []string, selected string) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Dates = dates
	sess.SelectedDate = selected
	return nil
}

// AssignToPlan assigns the activity to the currently selected date.
func (s *SessionService) AssignToPlan(ctx context.Context, id string, place domain.Place) (bool, error) {
	sess, err := s.Get(id)
	if err != nil {
		return false, err
	}
	sess.Lock()
	defer sess.Unlock()
	return s.plans.Assign(ctx, sess, place)
}

// dispatch enqueues one focus event and runs an evaluation, the only
// way focus state may change.
func (s *SessionService) dispatch(ctx context.Context, id string, ev domain.FocusEvent) (*domain.FocusChange, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Enqueue(ev)
	return s.resolver.Evaluate(ctx, sess), nil
}

// loadBootstrapHome reconstructs a persisted home location. Both lat
// and lng keys must be present; values that fail decimal parsing are
// treated as no bootstrap. A viewport that fails to parse aborts the
// session open.
func (s *SessionService) loadBootstrapHome(ctx context.Context, userID string) (*domain.Place, error) {
	fields, err := s.bootstrap.LoadHome(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "bootstrap store unavailable", "error", err)
		return nil, nil
	}

	latStr, okLat := fields[bootstrapLat]
	lngStr, okLng := fields[bootstrapLng]
	if !okLat || !okLng {
		return nil, nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		slog.WarnContext(ctx, "unparseable bootstrap coordinates", "lat", latStr, "lng", lngStr)
		return nil, nil
	}

	place := &domain.Place{
		ID:       fields[bootstrapPlaceID],
		Name:     fields[bootstrapName],
		Address:  fields[bootstrapAddress],
		Location: domain.GeoPoint{Lat: lat, Lon: lng},
	}

	if raw, ok := fields[bootstrapViewport]; ok && raw != "" {
		var b domain.Bounds
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("parse bootstrap viewport: %w", err)
		}
		place.Viewport = &b
	}
	return place, nil
}

// bootstrapFields serializes a home place into the persisted key set.
func bootstrapFields(p *domain.Place) map[string]string {
	fields := map[string]string{
		bootstrapName:    p.Name,
		bootstrapAddress: p.Address,
		bootstrapPlaceID: p.ID,
		bootstrapLat:     strconv.FormatFloat(p.Location.Lat, 'f', -1, 64),
		bootstrapLng:     strconv.FormatFloat(p.Location.Lon, 'f', -1, 64),
	}
	if p.Viewport != nil {
		if raw, err := json.Marshal(p.Viewport); err == nil {
			fields[bootstrapViewport] = string(raw)
		}
	}
	return fields
}

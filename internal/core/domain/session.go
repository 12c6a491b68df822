package domain

import (
	"sync"
	"time"
)

// Session is the owned, session-scoped mutable state of one planning
// page: home and search signals, the activity group store, the daily
// plan, and the pending focus events. All mutation is routed through
// the usecases layer while holding the session lock; collaborators only
// read snapshots and raise change requests upward.
type Session struct {
	mu sync.Mutex

	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"`

	Home     *Place `json:"home,omitempty"`
	Searched *Place `json:"searched,omitempty"`

	// Groups is owned by the activity-listing collaborator; the core
	// only reads it. Order within a group is significant: selection
	// references address it positionally.
	Groups     map[string][]Place `json:"groups"`
	OpenGroups map[string]bool    `json:"open_groups"`

	Dates        []string  `json:"dates"`
	SelectedDate string    `json:"selected_date,omitempty"`
	Plan         DailyPlan `json:"plan"`

	FocusTarget *Place    `json:"focus_target,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	pending []FocusEvent
}

// NewSession creates an empty session.
func NewSession(id, userID string) *Session {
	return &Session{
		ID:         id,
		UserID:     userID,
		Groups:     make(map[string][]Place),
		OpenGroups: make(map[string]bool),
		Plan:       make(DailyPlan),
		CreatedAt:  time.Now(),
	}
}

// Lock serializes evaluation: one focus resolution or plan assignment
// runs to completion before the next event for this session is seen.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Enqueue appends a focus event. Caller must hold the lock.
func (s *Session) Enqueue(ev FocusEvent) {
	s.pending = append(s.pending, ev)
}

// DrainEvents removes and returns the pending event batch in arrival
// order. Caller must hold the lock.
func (s *Session) DrainEvents() []FocusEvent {
	evs := s.pending
	s.pending = nil
	return evs
}

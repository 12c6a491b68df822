package domain

import "time"

// DailyPlan maps a date key (a stable string rendering of a calendar
// date) to the ordered sequence of activities assigned to that date.
// Within one date's sequence each place ID appears at most once.
type DailyPlan map[string][]Place

// Contains reports whether an activity with the given place ID is
// already assigned to the date.
func (p DailyPlan) Contains(dateKey, placeID string) bool {
	for _, place := range p[dateKey] {
		if place.ID == placeID {
			return true
		}
	}
	return false
}

// PlanAssignment is the record of one activity assigned to one date.
// UserID, PlaceID and DateKey form the remote-sync payload; the rest
// is audit metadata.
type PlanAssignment struct {
	UserID     string    `json:"user_id"`
	PlaceID    string    `json:"place_id"`
	DateKey    string    `json:"daily_plan_id"`
	SessionID  string    `json:"session_id,omitempty"`
	PlaceName  string    `json:"place_name,omitempty"`
	AssignedAt time.Time `json:"assigned_at,omitempty"`
}

package domain

// Place is a point of interest: a search result, a candidate activity,
// or the user's home base. Places are immutable once constructed; any
// "change" replaces the whole value. Identity is the place ID, which is
// globally unique per real-world place.
type Place struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	Category string   `json:"category,omitempty"`
	Location GeoPoint `json:"location"`
	Viewport *Bounds  `json:"viewport,omitempty"`
	Distance *float64 `json:"distance,omitempty"` // computed field
}

// SameAs reports identifier equality, the only notion of place equality.
func (p Place) SameAs(other Place) bool {
	return p.ID == other.ID
}

// SelectionRef is a weak, positional reference into an activity group:
// (group ID, index). It is resolved against the group store at the
// moment it is needed, never at the moment it was created, so a stale
// reference simply yields no place.
type SelectionRef struct {
	GroupID string `json:"group_id"`
	Index   int    `json:"index"`
}

// Resolve looks the reference up against the current group contents.
// A missing group or out-of-range index yields (zero, false).
func (r SelectionRef) Resolve(groups map[string][]Place) (Place, bool) {
	places, ok := groups[r.GroupID]
	if !ok {
		return Place{}, false
	}
	if r.Index < 0 || r.Index >= len(places) {
		return Place{}, false
	}
	return places[r.Index], true
}

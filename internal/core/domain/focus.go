package domain

// FocusEventKind discriminates the four user actions that can move the
// map focus. Declaration order is priority order, highest first.
type FocusEventKind int

const (
	FocusHomeChanged FocusEventKind = iota
	FocusSearchSelected
	FocusActivitySelected
	FocusHomeRequested
)

// String returns the signal name used in logs and metrics labels.
func (k FocusEventKind) String() string {
	switch k {
	case FocusHomeChanged:
		return "home"
	case FocusSearchSelected:
		return "search"
	case FocusActivitySelected:
		return "activity"
	case FocusHomeRequested:
		return "explicit_home"
	default:
		return "unknown"
	}
}

// FocusEvent is a tagged variant: each user action that may move the
// map produces exactly one event. Place is set for HomeChanged (nil
// means home was cleared) and SearchSelected; Ref is set for
// ActivitySelected.
type FocusEvent struct {
	Kind  FocusEventKind `json:"kind"`
	Place *Place         `json:"place,omitempty"`
	Ref   SelectionRef   `json:"ref,omitempty"`
}

// FocusChange is published to the map-display collaborator whenever an
// evaluation produces a new focus target.
type FocusChange struct {
	SessionID string `json:"session_id"`
	Signal    string `json:"signal"`
	Target    Place  `json:"target"`
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/core/usecases"
)

// validatePlace checks the fields a collaborator must supply.
func validatePlace(p *domain.Place) string {
	if p.ID == "" {
		return "place id is required"
	}
	if p.Name == "" {
		return "place name is required"
	}
	if p.Location.Lat < -90 || p.Location.Lat > 90 {
		return "lat must be between -90 and 90"
	}
	if p.Location.Lon < -180 || p.Location.Lon > 180 {
		return "lon must be between -180 and 180"
	}
	return ""
}

// sessionJSON marshals a session snapshot under its lock.
func sessionJSON(c *fiber.Ctx, sess *domain.Session) error {
	sess.Lock()
	defer sess.Unlock()
	return c.JSON(sess)
}

// OpenSessionHandler starts a planning session, bootstrapping the home
// location from persisted state when present.
func OpenSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		sess, err := deps.Sessions.Open(c.UserContext(), req.UserID)
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Status(201)
		return sessionJSON(c, sess)
	}
}

// GetSessionHandler returns the full session snapshot.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "session not found")
		}
		return sessionJSON(c, sess)
	}
}

// SessionFocusHandler returns the current focus target, if any.
func SessionFocusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "session not found")
		}
		sess.Lock()
		defer sess.Unlock()
		return c.JSON(fiber.Map{"focus_target": sess.FocusTarget})
	}
}

// SetHomeHandler replaces the home location.
func SetHomeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var place domain.Place
		if err := c.BodyParser(&place); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if msg := validatePlace(&place); msg != "" {
			return errBadRequest(c, msg)
		}

		fc, err := deps.Sessions.SetHome(c.UserContext(), c.Params("id"), &place)
		if err != nil {
			return sessionError(c, err)
		}
		return c.JSON(fiber.Map{"focus": fc})
	}
}

// ClearHomeHandler removes the home location.
func ClearHomeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Sessions.SetHome(c.UserContext(), c.Params("id"), nil)
		if err != nil {
			return sessionError(c, err)
		}
		return c.JSON(fiber.Map{"focus": fc})
	}
}

// FocusHomeHandler handles an explicit "show home" request.
func FocusHomeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Sessions.RequestHomeFocus(c.UserContext(), c.Params("id"))
		if err != nil {
			return sessionError(c, err)
		}
		return c.JSON(fiber.Map{"focus": fc})
	}
}

// SearchSelectHandler records a place chosen in the search box.
func SearchSelectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var place domain.Place
		if err := c.BodyParser(&place); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if msg := validatePlace(&place); msg != "" {
			return errBadRequest(c, msg)
		}

		fc, err := deps.Sessions.SelectSearchResult(c.UserContext(), c.Params("id"), &place)
		if err != nil {
			return sessionError(c, err)
		}
		return c.JSON(fiber.Map{"focus": fc})
	}
}

// SelectActivityHandler records a positional activity selection.
func SelectActivityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ref domain.SelectionRef
		if err := c.BodyParser(&ref); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if ref.GroupID == "" {
			return errBadRequest(c, "group_id is required")
		}
		if ref.Index < 0 {
			return errBadRequest(c, "index must not be negative")
		}

		fc, err := deps.Sessions.SelectActivity(c.UserContext(), c.Params("id"), ref)
		if err != nil {
			return sessionError(c, err)
		}
		return c.JSON(fiber.Map{"focus": fc})
	}
}

// ReplaceGroupHandler swaps the contents of one activity group. The
// activity-listing collaborator owns the contents; this endpoint is its
// change request.
func ReplaceGroupHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var places []domain.Place
		if err := c.BodyParser(&places); err != nil {
			return errBadRequest(c, "invalid request body: expected a place array")
		}
		for i := range places {
			if msg := validatePlace(&places[i]); msg != "" {
				return errBadRequest(c, msg)
			}
		}

		// The group ID is retained as a map key past this request, so it
		// must not alias fasthttp's reusable buffer.
		if err := deps.Sessions.ReplaceGroup(c.UserContext(), c.Params("id"), utils.CopyString(c.Params("group")), places); err != nil {
			return sessionError(c, err)
		}
		return c.SendStatus(204)
	}
}

// SetGroupOpenHandler toggles a group's open/closed state.
func SetGroupOpenHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Open bool `json:"open"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Sessions.SetGroupOpen(c.UserContext(), c.Params("id"), utils.CopyString(c.Params("group")), req.Open); err != nil {
			if errors.Is(err, usecases.ErrSessionNotFound) {
				return errNotFound(c, "session not found")
			}
			return errBadRequest(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// SetDatesHandler replaces the tracked dates and selected date.
func SetDatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Dates    []string `json:"dates"`
			Selected string   `json:"selected"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Sessions.SetDates(c.UserContext(), c.Params("id"), req.Dates, req.Selected); err != nil {
			return sessionError(c, err)
		}
		return c.SendStatus(204)
	}
}

// AssignPlanHandler assigns an activity to the currently selected date.
// A failed remote sync keeps the local assignment and reports 502.
func AssignPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var place domain.Place
		if err := c.BodyParser(&place); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if msg := validatePlace(&place); msg != "" {
			return errBadRequest(c, msg)
		}

		added, err := deps.Sessions.AssignToPlan(c.UserContext(), c.Params("id"), place)
		if err != nil {
			if errors.Is(err, usecases.ErrSessionNotFound) {
				return errNotFound(c, "session not found")
			}
			if added {
				// Local state committed; only the remote sync failed.
				return errBadGateway(c, err.Error())
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"added": added})
	}
}

// GetPlanHandler returns the daily plan.
func GetPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.Params("id"))
		if err != nil {
			return errNotFound(c, "session not found")
		}
		sess.Lock()
		defer sess.Unlock()
		return c.JSON(fiber.Map{
			"dates":         sess.Dates,
			"selected_date": sess.SelectedDate,
			"plan":          sess.Plan,
		})
	}
}

// CategoriesHandler lists the activity categories in the catalog.
func CategoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := deps.Catalog.Categories(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"categories": categories})
	}
}

// CatalogListHandler lists candidate activities in one category.
func CatalogListHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Params("category")
		limit := c.QueryInt("limit", 50)

		var near *domain.GeoPoint
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		if lat != 0 || lon != 0 {
			near = &domain.GeoPoint{Lat: lat, Lon: lon}
		}

		places, err := deps.Catalog.ListByCategory(c.UserContext(), category, near, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(places)
	}
}

// SearchPlacesHandler performs name search over the catalog.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)

		places, err := deps.Catalog.Search(c.UserContext(), query, nil, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(places)
	}
}

// NearbyPlacesHandler returns catalog places within a radius of a point.
func NearbyPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 50)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 100000 {
			return errBadRequest(c, "radius must be between 1 and 100000 meters")
		}

		places, err := deps.Catalog.FindNearby(c.UserContext(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(places)
	}
}

// GetPlaceHandler returns a single catalog place.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		place, err := deps.Catalog.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "place not found")
		}
		return c.JSON(place)
	}
}

// ListAssignmentsHandler returns the archived plan assignments of one
// user, paginated.
func ListAssignmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Assignments == nil {
			return errInternal(c, "assignment store not available")
		}
		userID := c.Query("user_id")
		if userID == "" {
			return errBadRequest(c, "user_id query parameter is required")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		assignments, err := deps.Assignments.ListByUser(c.UserContext(), userID, 200)
		if err != nil {
			return errInternal(c, err.Error())
		}

		total := len(assignments)
		if offset >= total {
			assignments = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			assignments = assignments[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: assignments, Pagination: pg})
	}
}

// sessionError maps usecase errors to API responses.
func sessionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, usecases.ErrSessionNotFound) {
		return errNotFound(c, "session not found")
	}
	return errInternal(c, err.Error())
}

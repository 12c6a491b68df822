package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/voyago/voyago/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"northeast": &graphql.Field{Type: geoPointType},
			"southwest": &graphql.Field{Type: geoPointType},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"address":  &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"viewport": &graphql.Field{Type: boundsType},
			"distance": &graphql.Field{Type: graphql.Float},
		},
	})

	planDayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlanDay",
		Fields: graphql.Fields{
			"date":   &graphql.Field{Type: graphql.String},
			"places": &graphql.Field{Type: graphql.NewList(placeType)},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"user_id":       &graphql.Field{Type: graphql.String},
			"home":          &graphql.Field{Type: placeType},
			"focus_target":  &graphql.Field{Type: placeType},
			"dates":         &graphql.Field{Type: graphql.NewList(graphql.String)},
			"selected_date": &graphql.Field{Type: graphql.String},
			"plan":          &graphql.Field{Type: graphql.NewList(planDayType)},
		},
	})

	assignmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Assignment",
		Fields: graphql.Fields{
			"user_id":       &graphql.Field{Type: graphql.String},
			"place_id":      &graphql.Field{Type: graphql.String},
			"daily_plan_id": &graphql.Field{Type: graphql.String},
			"place_name":    &graphql.Field{Type: graphql.String},
			"assigned_at":   &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Snapshot of one planning session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Sessions.Get(p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return sessionSnapshot(sess), nil
				},
			},
			"searchPlaces": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Search catalog places by name",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Catalog.Search(p.Context, q, nil, limit)
				},
			},
			"placesByCategory": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "List catalog places in one category",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category := p.Args["category"].(string)
					limit := p.Args["limit"].(int)
					return deps.Catalog.ListByCategory(p.Context, category, nil, limit)
				},
			},
			"placesNearby": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Find catalog places near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Catalog.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"categories": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Distinct activity categories",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Catalog.Categories(p.Context)
				},
			},
			"assignments": &graphql.Field{
				Type:        graphql.NewList(assignmentType),
				Description: "Archived plan assignments of a user",
				Args: graphql.FieldConfigArgument{
					"user_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Assignments == nil {
						return nil, fmt.Errorf("assignment store not available")
					}
					userID := p.Args["user_id"].(string)
					limit := p.Args["limit"].(int)
					assignments, err := deps.Assignments.ListByUser(p.Context, userID, limit)
					if err != nil {
						return nil, err
					}
					result := make([]map[string]interface{}, 0, len(assignments))
					for _, a := range assignments {
						result = append(result, map[string]interface{}{
							"user_id":       a.UserID,
							"place_id":      a.PlaceID,
							"daily_plan_id": a.DateKey,
							"place_name":    a.PlaceName,
							"assigned_at":   a.AssignedAt.Format("2006-01-02T15:04:05Z07:00"),
						})
					}
					return result, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// sessionSnapshot copies session state into a map under the session
// lock, so GraphQL field resolution never races with event handling.
func sessionSnapshot(sess *domain.Session) map[string]interface{} {
	sess.Lock()
	defer sess.Unlock()

	plan := make([]map[string]interface{}, 0, len(sess.Dates))
	for _, date := range sess.Dates {
		if places, ok := sess.Plan[date]; ok {
			plan = append(plan, map[string]interface{}{"date": date, "places": places})
		}
	}

	return map[string]interface{}{
		"id":            sess.ID,
		"user_id":       sess.UserID,
		"home":          sess.Home,
		"focus_target":  sess.FocusTarget,
		"dates":         sess.Dates,
		"selected_date": sess.SelectedDate,
		"plan":          plan,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}

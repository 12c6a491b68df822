package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/voyago/voyago/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler())
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 with a 15s per-request timeout
	v1 := app.Group("/v1")

	// Planning sessions
	v1.Post("/sessions", timeout.NewWithContext(OpenSessionHandler(deps), 15*time.Second))
	v1.Get("/sessions/:id", timeout.NewWithContext(GetSessionHandler(deps), 15*time.Second))
	v1.Get("/sessions/:id/focus", timeout.NewWithContext(SessionFocusHandler(deps), 15*time.Second))
	v1.Put("/sessions/:id/home", timeout.NewWithContext(SetHomeHandler(deps), 15*time.Second))
	v1.Delete("/sessions/:id/home", timeout.NewWithContext(ClearHomeHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/home/focus", timeout.NewWithContext(FocusHomeHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/search", timeout.NewWithContext(SearchSelectHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/selection", timeout.NewWithContext(SelectActivityHandler(deps), 15*time.Second))
	v1.Put("/sessions/:id/groups/:group", timeout.NewWithContext(ReplaceGroupHandler(deps), 15*time.Second))
	v1.Patch("/sessions/:id/groups/:group", timeout.NewWithContext(SetGroupOpenHandler(deps), 15*time.Second))
	v1.Put("/sessions/:id/dates", timeout.NewWithContext(SetDatesHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/plan", timeout.NewWithContext(AssignPlanHandler(deps), 15*time.Second))
	v1.Get("/sessions/:id/plan", timeout.NewWithContext(GetPlanHandler(deps), 15*time.Second))

	// Activity catalog
	v1.Get("/catalog/categories", timeout.NewWithContext(CategoriesHandler(deps), 15*time.Second))
	v1.Get("/catalog/:category", timeout.NewWithContext(CatalogListHandler(deps), 15*time.Second))
	v1.Get("/places/search", timeout.NewWithContext(SearchPlacesHandler(deps), 15*time.Second))
	v1.Get("/places/nearby", timeout.NewWithContext(NearbyPlacesHandler(deps), 15*time.Second))
	v1.Get("/places/:id", timeout.NewWithContext(GetPlaceHandler(deps), 15*time.Second))

	// Archived assignments
	v1.Get("/assignments", timeout.NewWithContext(ListAssignmentsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	RegisterDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

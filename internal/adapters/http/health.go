package http

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports process liveness.
func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// ReadyHandler checks downstream dependencies. Any failing check turns
// the response into a 503 so load balancers stop routing here.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		checks := fiber.Map{}
		healthy := true

		if deps.DB != nil {
			if err := deps.DB.Ping(c.UserContext()); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			} else {
				checks["postgres"] = "ok"
			}
		}

		if deps.NATS != nil {
			if !deps.NATS.IsConnected() {
				checks["nats"] = "disconnected"
				healthy = false
			} else {
				checks["nats"] = "ok"
			}
		}

		if deps.Cache != nil {
			if err := deps.Cache.Ping(c.UserContext()); err != nil {
				checks["valkey"] = err.Error()
				healthy = false
			} else {
				checks["valkey"] = "ok"
			}
		}

		status := "ready"
		code := 200
		if !healthy {
			status = "degraded"
			code = 503
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "checks": checks})
	}
}

package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/evalink-api/internal/config"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthCheck reports service health. Each check is probed with a short timeout and
// any failure turns the response into 503.
func HealthCheck(cfg config.Config, checks map[string]func(context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		if len(checks) > 0 {
			payload.Dependencies = make(map[string]string, len(checks))
			for name, check := range checks {
				ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
				err := check(ctx)
				cancel()
				if err != nil {
					payload.Status = "degraded"
					payload.Dependencies[name] = "down"
					continue
				}
				payload.Dependencies[name] = "ok"
			}
		}

		status := fiber.StatusOK
		if payload.Status != "ok" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(payload)
	}
}

package router

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/evalink-api/internal/config"
	"github.com/noah-isme/evalink-api/internal/handler"
	"github.com/noah-isme/evalink-api/internal/middleware"
	"github.com/noah-isme/evalink-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler *handler.EvaluationHandler
	QuestionHandler   *handler.QuestionHandler
	UserHandler       *handler.UserHandler
	AcademicHandler   *handler.AcademicHandler
	IncidentHandler   *handler.IncidentHandler
	ActivityHandler   *handler.ActivityHandler
	SeedHandler       *handler.SeedHandler
	HealthChecks      map[string]func(context.Context) error
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	app.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))
	app.Get("/metrics", observability.MetricsHandler())

	guard := authGuard(cfg.JWTSecret)

	if deps.UserHandler != nil {
		deps.UserHandler.Register(app, guard)
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(app, guard)
	}
	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(app, guard)
	}
	if deps.AcademicHandler != nil {
		deps.AcademicHandler.Register(app, guard)
	}
	if deps.IncidentHandler != nil {
		deps.IncidentHandler.Register(app, guard)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(app, guard)
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(app.Group("/seed"))
	}
}

// authGuard protects routes with bearer tokens signed by secret. Without a secret
// routes are left open, which only happens in tests.
func authGuard(secret string) handler.Guard {
	if secret == "" {
		return nil
	}
	return func(roles ...string) fiber.Handler {
		if len(roles) == 0 {
			return middleware.JWTProtected(secret)
		}
		return middleware.Authorize(secret, roles...)
	}
}

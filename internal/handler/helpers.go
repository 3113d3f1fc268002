package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/middleware"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/service"
	"github.com/noah-isme/evalink-api/internal/utils"
)

// Guard builds the middleware protecting a route. Called with no roles it must only
// require an authenticated caller.
type Guard func(roles ...string) fiber.Handler

func (g Guard) allow(roles ...string) fiber.Handler {
	if g == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return g(roles...)
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseIDParam(c *fiber.Ctx, key string) (uint, bool) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 32)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	id, _ := middleware.UserID(c)
	return service.ActivityActor{ID: id, Role: middleware.UserRole(c)}
}

// ownsResource reports whether a caller with the given role may act on id. Only
// callers authenticated with the restricted role are limited to their own id.
func ownsResource(c *fiber.Ctx, restrictedRole string, id uint) bool {
	if middleware.UserRole(c) != restrictedRole {
		return true
	}
	callerID, ok := middleware.UserID(c)
	return ok && callerID == id
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

func sendValidationError(c *fiber.Ctx, err error) error {
	return utils.Fail(c, fiber.StatusBadRequest, "Validation failed", validationDetails(err))
}

var adminOnly = []string{models.RoleAdmin}

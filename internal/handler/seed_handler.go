package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/service"
	"github.com/noah-isme/evalink-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for seeding data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes. They are guarded by the X-Seed-Token header rather
// than a bearer token so a fresh deployment can be provisioned before any user exists.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/evaluation-catalog", h.catalog)
}

type seedResponse struct {
	Message  string `json:"message"`
	Affected int64  `json:"affected"`
}

func (h *SeedHandler) catalog(c *fiber.Ctx) error {
	var payload dto.SeedCatalogRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	affected, err := h.service.SeedCatalog(c.UserContext(), c.Get("X-Seed-Token"), payload)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.OK(c, seedResponse{Message: "Evaluation catalog seeded", Affected: affected})
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "Seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "Invalid seed token")
	case errors.Is(err, service.ErrBlankText):
		return utils.SendError(c, fiber.StatusBadRequest, "Names and question texts must not be blank")
	case isValidationError(err):
		return sendValidationError(c, err)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("seed operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Seed operation failed")
	}
}

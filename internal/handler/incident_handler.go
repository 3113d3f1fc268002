package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/service"
	"github.com/noah-isme/evalink-api/internal/utils"
)

// IncidentHandler exposes incident reporting.
type IncidentHandler struct {
	service service.IncidentService
	logger  zerolog.Logger
}

// NewIncidentHandler constructs the handler.
func NewIncidentHandler(service service.IncidentService, logger zerolog.Logger) *IncidentHandler {
	return &IncidentHandler{
		service: service,
		logger:  logger.With().Str("component", "incident_handler").Logger(),
	}
}

// Register wires incident routes. Any signed-in user may report an incident.
func (h *IncidentHandler) Register(router fiber.Router, guard Guard) {
	router.Post("/incidents", guard.allow(), h.create)
	router.Get("/incidents", guard.allow(adminOnly...), h.list)
	router.Patch("/incidents/:id", guard.allow(adminOnly...), h.updateStatus)
}

func (h *IncidentHandler) create(c *fiber.Ctx) error {
	var payload dto.IncidentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	incident, err := h.service.Create(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return sendValidationError(c, err)
		case errors.Is(err, service.ErrBlankText):
			return utils.SendError(c, fiber.StatusBadRequest, "Title is required")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to report incident")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to report incident")
		}
	}

	return utils.SendCreated(c, fiber.StatusCreated, "Incident reported successfully", incident.ID)
}

func (h *IncidentHandler) list(c *fiber.Ctx) error {
	incidents, err := h.service.List(c.UserContext(), c.Query("status"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidIncidentStatus) {
			return utils.SendError(c, fiber.StatusBadRequest, "Invalid status")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list incidents")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch incidents")
	}
	return utils.List(c, incidents)
}

func (h *IncidentHandler) updateStatus(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid incident id")
	}

	var payload dto.IncidentStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if _, err := h.service.UpdateStatus(c.UserContext(), id, payload, activityActorFromContext(c)); err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrInvalidIncidentStatus):
			return utils.SendError(c, fiber.StatusBadRequest, "Status must be Open, In Progress or Resolved")
		case errors.Is(err, service.ErrIncidentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "Incident not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("incident_id", id).Msg("failed to update incident")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to update incident")
		}
	}

	return utils.SendMessage(c, fiber.StatusOK, "Incident status updated successfully")
}

package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/service"
	"github.com/noah-isme/evalink-api/internal/utils"
)

// ActivityHandler exposes the audit trail to administrators.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity log routes.
func (h *ActivityHandler) Register(router fiber.Router, guard Guard) {
	router.Get("/activity-logs", guard.allow(adminOnly...), h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil || actorID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid actor id")
	}

	request := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		ActorID:    uint(actorID),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		since, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "Invalid since date")
		}
		request.Since = &since
	}

	response, err := h.service.List(c.UserContext(), request)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch activity logs")
	}

	return utils.OK(c, response)
}

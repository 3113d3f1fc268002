package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/service"
	"github.com/noah-isme/evalink-api/internal/utils"
)

// EvaluationHandler exposes evaluation submission and reporting endpoints.
type EvaluationHandler struct {
	service     service.EvaluationService
	submitLimit fiber.Handler
	logger      zerolog.Logger
}

// NewEvaluationHandler constructs the handler. submitLimit may be nil.
func NewEvaluationHandler(service service.EvaluationService, submitLimit fiber.Handler, logger zerolog.Logger) *EvaluationHandler {
	if submitLimit == nil {
		submitLimit = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &EvaluationHandler{
		service:     service,
		submitLimit: submitLimit,
		logger:      logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register wires evaluation routes.
func (h *EvaluationHandler) Register(router fiber.Router, guard Guard) {
	router.Post("/evaluations", guard.allow(models.RoleStudent, models.RoleAdmin), h.submitLimit, h.submit)
	router.Get("/evaluations", guard.allow(adminOnly...), h.report)
	router.Get("/evaluations/stats/daily", guard.allow(adminOnly...), h.daily)
	router.Get("/faculty/:facultyId/evaluations", guard.allow(models.RoleFaculty, models.RoleAdmin), h.facultySummary)
}

func (h *EvaluationHandler) submit(c *fiber.Ctx) error {
	var payload dto.EvaluationSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if payload.StudentID != nil && !ownsResource(c, models.RoleStudent, *payload.StudentID) {
		return utils.SendError(c, fiber.StatusForbidden, "You can only submit your own evaluations")
	}

	id, err := h.service.Submit(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingEvaluationData):
			return utils.SendError(c, fiber.StatusBadRequest, "Missing required evaluation data")
		case errors.Is(err, service.ErrNoAnswers):
			return utils.SendError(c, fiber.StatusBadRequest, "No answers provided")
		case errors.Is(err, service.ErrInvalidQuestionID), errors.Is(err, service.ErrDuplicateQuestion):
			return utils.Fail(c, fiber.StatusBadRequest, "Invalid answers", err.Error())
		case errors.Is(err, service.ErrUnknownReference):
			return utils.SendError(c, fiber.StatusBadRequest, "Unknown student, faculty, subject or question")
		case errors.Is(err, service.ErrEvaluationExists):
			return utils.SendError(c, fiber.StatusConflict, "You have already evaluated this subject")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to submit evaluation")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to submit evaluation")
		}
	}

	return utils.SendCreated(c, fiber.StatusCreated, "Evaluation submitted successfully", id)
}

func (h *EvaluationHandler) facultySummary(c *fiber.Ctx) error {
	facultyID, ok := parseIDParam(c, "facultyId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid faculty id")
	}
	if !ownsResource(c, models.RoleFaculty, facultyID) {
		return utils.SendError(c, fiber.StatusForbidden, "You can only view your own evaluations")
	}

	summaries, err := h.service.FacultySummary(c.UserContext(), facultyID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("faculty_id", facultyID).Msg("failed to load faculty evaluations")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch evaluations")
	}

	return utils.List(c, summaries)
}

func (h *EvaluationHandler) report(c *fiber.Ctx) error {
	items, err := h.service.Report(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load evaluation report")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch evaluations")
	}
	return utils.List(c, items)
}

func (h *EvaluationHandler) daily(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "days")
	if err != nil {
		days = 0
	}

	var counts []dto.DailyEvaluationCount
	if strings.EqualFold(strings.TrimSpace(c.Query("fill")), "true") {
		counts, err = h.service.DailySeries(c.UserContext(), days)
	} else {
		counts, err = h.service.DailyCounts(c.UserContext(), days)
	}
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load daily evaluation counts")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch daily evaluation stats")
	}

	return utils.List(c, counts)
}

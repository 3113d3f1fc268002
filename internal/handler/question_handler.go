package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/service"
	"github.com/noah-isme/evalink-api/internal/utils"
)

// QuestionHandler serves the evaluation form catalog.
type QuestionHandler struct {
	service service.QuestionService
	logger  zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register wires catalog routes. Reading the catalog is public.
func (h *QuestionHandler) Register(router fiber.Router, guard Guard) {
	router.Get("/evaluation-questions", h.catalog)
	router.Post("/evaluation-categories", guard.allow(adminOnly...), h.createCategory)
	router.Delete("/evaluation-categories/:id", guard.allow(adminOnly...), h.deleteCategory)
	router.Post("/evaluation-questions", guard.allow(adminOnly...), h.createQuestion)
	router.Delete("/evaluation-questions/:id", guard.allow(adminOnly...), h.deleteQuestion)
}

func (h *QuestionHandler) catalog(c *fiber.Ctx) error {
	categories, err := h.service.Catalog(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load question catalog")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch evaluation questions")
	}
	return utils.List(c, categories)
}

func (h *QuestionHandler) createCategory(c *fiber.Ctx) error {
	var payload dto.CategoryCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	id, err := h.service.CreateCategory(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrBlankText):
			return utils.SendError(c, fiber.StatusBadRequest, "Category name is required")
		case errors.Is(err, service.ErrCategoryExists):
			return utils.SendError(c, fiber.StatusConflict, "Category already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create category")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to create category")
		}
	}

	return utils.SendCreated(c, fiber.StatusCreated, "Category created successfully", id)
}

func (h *QuestionHandler) createQuestion(c *fiber.Ctx) error {
	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	id, err := h.service.CreateQuestion(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrBlankText):
			return utils.SendError(c, fiber.StatusBadRequest, "Category and question text are required")
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusBadRequest, "Category does not exist")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create question")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to create question")
		}
	}

	return utils.SendCreated(c, fiber.StatusCreated, "Question created successfully", id)
}

func (h *QuestionHandler) deleteCategory(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid category id")
	}

	if err := h.service.DeleteCategory(c.UserContext(), id, activityActorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Category not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("category_id", id).Msg("failed to delete category")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to delete category")
	}

	return utils.SendMessage(c, fiber.StatusOK, "Category deleted successfully")
}

func (h *QuestionHandler) deleteQuestion(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid question id")
	}

	if err := h.service.DeleteQuestion(c.UserContext(), id, activityActorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Question not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("question_id", id).Msg("failed to delete question")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to delete question")
	}

	return utils.SendMessage(c, fiber.StatusOK, "Question deleted successfully")
}

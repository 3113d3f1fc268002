package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/service"
	"github.com/noah-isme/evalink-api/internal/utils"
)

// UserHandler exposes login and account management.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register wires login and user routes.
func (h *UserHandler) Register(router fiber.Router, guard Guard) {
	router.Post("/login", h.login)
	router.Post("/users", guard.allow(adminOnly...), h.create)
	router.Get("/users", guard.allow(adminOnly...), h.list)
	router.Delete("/users/:id", guard.allow(adminOnly...), h.delete)
}

func (h *UserHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "Username and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "Invalid credentials")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("login failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "Login failed")
		}
	}

	return utils.OK(c, response)
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	id, err := h.service.Create(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return sendValidationError(c, err)
		case errors.Is(err, service.ErrBlankText):
			return utils.SendError(c, fiber.StatusBadRequest, "Name is required")
		case errors.Is(err, service.ErrUserExists):
			return utils.SendError(c, fiber.StatusConflict, "User already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create user")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to create user")
		}
	}

	return utils.SendCreated(c, fiber.StatusCreated, "User created successfully", id)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	users, err := h.service.ListByRole(c.UserContext(), c.Query("role"))
	if err != nil {
		if errors.Is(err, service.ErrRoleRequired) {
			return utils.SendError(c, fiber.StatusBadRequest, "Role is required")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch users")
	}
	return utils.List(c, users)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	if err := h.service.Delete(c.UserContext(), id, activityActorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "User not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("user_id", id).Msg("failed to delete user")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to delete user")
	}

	return utils.SendMessage(c, fiber.StatusOK, "User deleted successfully")
}

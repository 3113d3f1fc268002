package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/handler"
	"github.com/noah-isme/evalink-api/internal/service"
)

type stubUserService struct {
	createErr error
	users     []dto.UserResponse
	listErr   error
	deleteErr error
	loginErr  error
	lastRole  string
}

func (s *stubUserService) Create(context.Context, dto.UserCreateRequest, service.ActivityActor) (uint, error) {
	return 1001, s.createErr
}

func (s *stubUserService) ListByRole(_ context.Context, role string) ([]dto.UserResponse, error) {
	s.lastRole = role
	return s.users, s.listErr
}

func (s *stubUserService) Delete(context.Context, uint, service.ActivityActor) error {
	return s.deleteErr
}

func (s *stubUserService) Login(_ context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if s.loginErr != nil {
		return dto.LoginResponse{}, s.loginErr
	}
	return dto.LoginResponse{Message: "Login successful", Role: "student", UserID: 1001, Token: "signed"}, nil
}

func newUserApp(svc service.UserService) *fiber.App {
	app := fiber.New()
	handler.NewUserHandler(svc, zerolog.Nop()).Register(app, nil)
	return app
}

func TestUserHandlerLogin(t *testing.T) {
	resp, err := newUserApp(&stubUserService{}).Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{"username": "1001", "password": "pw"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.LoginResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "signed", body.Token)
	require.Equal(t, uint(1001), body.UserID)

	resp, err = newUserApp(&stubUserService{loginErr: service.ErrInvalidCredentials}).Test(jsonRequest(t, http.MethodPost, "/login", map[string]string{"username": "1001", "password": "bad"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid credentials", errorMessage(t, resp))
}

func TestUserHandlerCreateConflict(t *testing.T) {
	resp, err := newUserApp(&stubUserService{createErr: service.ErrUserExists}).Test(jsonRequest(t, http.MethodPost, "/users", map[string]interface{}{"id": 1001}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUserHandlerList(t *testing.T) {
	svc := &stubUserService{users: []dto.UserResponse{{ID: 2001, Name: "Reyes"}}}
	resp, err := newUserApp(svc).Test(jsonRequest(t, http.MethodGet, "/users?role=faculty", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "faculty", svc.lastRole)

	var users []dto.UserResponse
	decodeResponse(t, resp, &users)
	require.Len(t, users, 1)

	resp, err = newUserApp(&stubUserService{listErr: service.ErrRoleRequired}).Test(jsonRequest(t, http.MethodGet, "/users", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUserHandlerDeleteMissing(t *testing.T) {
	resp, err := newUserApp(&stubUserService{deleteErr: service.ErrUserNotFound}).Test(jsonRequest(t, http.MethodDelete, "/users/5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

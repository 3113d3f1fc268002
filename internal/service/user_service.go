package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/repository"
)

var (
	// ErrUserExists indicates the identifier or email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleRequired indicates a listing without a role filter.
	ErrRoleRequired = errors.New("role is required")
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uint, role string) (string, error)
}

type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer returns an HS256 token issuer.
func NewJWTIssuer(secret string, ttl time.Duration) TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &jwtIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *jwtIssuer) Issue(userID uint, role string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// AdminCredentials is the bootstrap administrator account taken from configuration.
type AdminCredentials struct {
	Username string
	Password string
}

func (a AdminCredentials) configured() bool {
	return a.Username != "" && a.Password != ""
}

// UserService manages accounts and logins.
type UserService interface {
	Create(ctx context.Context, payload dto.UserCreateRequest, actor ActivityActor) (uint, error)
	ListByRole(ctx context.Context, role string) ([]dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	tokens    TokenIssuer
	admin     AdminCredentials
	activity  ActivityEnqueuer
	sanitizer *plainText
	cost      int
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo repository.UserRepository, validator *validator.Validate, tokens TokenIssuer, admin AdminCredentials, activity ActivityEnqueuer, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		tokens:    tokens,
		admin:     admin,
		activity:  activity,
		sanitizer: newPlainText(),
		cost:      bcrypt.DefaultCost,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest, actor ActivityActor) (uint, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}
	name := s.sanitizer.Clean(payload.Name)
	if name == "" {
		return 0, ErrBlankText
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), s.cost)
	if err != nil {
		return 0, err
	}

	user := models.User{
		ID:           payload.ID,
		Name:         name,
		Password:     string(hash),
		Role:         strings.ToLower(payload.Role),
		DepartmentID: payload.DepartmentID,
		SectionID:    payload.SectionID,
		Year:         payload.Year,
	}
	if payload.Email != nil {
		if email := strings.ToLower(strings.TrimSpace(*payload.Email)); email != "" {
			user.Email = &email
		}
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return 0, ErrUserExists
		}
		return 0, err
	}

	enqueueActivity(s.activity, actor, ActionUserCreated, "user", user.ID, map[string]interface{}{"role": user.Role})
	return user.ID, nil
}

func (s *userService) ListByRole(ctx context.Context, role string) ([]dto.UserResponse, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return nil, ErrRoleRequired
	}

	rows, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	users := make([]dto.UserResponse, 0, len(rows))
	for _, row := range rows {
		users = append(users, dto.UserResponse{
			ID:         row.ID,
			Name:       row.Name,
			Email:      row.Email,
			Year:       row.Year,
			Department: row.Department,
		})
	}
	return users, nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	enqueueActivity(s.activity, actor, ActionUserDeleted, "user", id, nil)
	return nil
}

func (s *userService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}
	username := strings.TrimSpace(payload.Username)

	if s.admin.configured() && username == s.admin.Username {
		if subtle.ConstantTimeCompare([]byte(payload.Password), []byte(s.admin.Password)) != 1 {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return s.issue(0, models.RoleAdmin)
	}

	id, err := strconv.ParseUint(username, 10, 32)
	if err != nil || id == 0 {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		s.logger.Debug().Uint("user_id", user.ID).Msg("password mismatch")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	return s.issue(user.ID, user.Role)
}

func (s *userService) issue(id uint, role string) (dto.LoginResponse, error) {
	token, err := s.tokens.Issue(id, role)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	return dto.LoginResponse{
		Message: "Login successful",
		Role:    role,
		UserID:  id,
		Token:   token,
	}, nil
}

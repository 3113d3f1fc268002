package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads a predefined evaluation form.
type SeedService interface {
	SeedCatalog(ctx context.Context, token string, payload dto.SeedCatalogRequest) (int64, error)
}

type seedService struct {
	repo      repository.CatalogSeeder
	validator *validator.Validate
	activity  ActivityEnqueuer
	sanitizer *plainText
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service. Seeding is refused unless enabled
// and a non-empty token is configured.
func NewSeedService(repo repository.CatalogSeeder, validator *validator.Validate, enabled bool, token string, activity ActivityEnqueuer, logger zerolog.Logger) SeedService {
	return &seedService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		sanitizer: newPlainText(),
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedCatalog(ctx context.Context, token string, payload dto.SeedCatalogRequest) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}

	categories, err := s.normalizeCatalog(payload.Categories)
	if err != nil {
		return 0, err
	}

	affected, err := s.repo.UpsertCatalog(ctx, categories)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Int("categories", len(categories)).Msg("evaluation catalog seeded")
	enqueueActivity(s.activity, ActivityActor{Role: "system"}, ActionQuestionsSeeded, "evaluation_category", 0, map[string]interface{}{
		"categories": len(categories),
		"affected":   affected,
	})
	return affected, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

// normalizeCatalog sanitizes names and texts and merges repeated category names
// in first-seen order.
func (s *seedService) normalizeCatalog(items []dto.SeedCategory) ([]models.EvaluationCategory, error) {
	categories := make([]models.EvaluationCategory, 0, len(items))
	index := map[string]int{}

	for _, item := range items {
		name := s.sanitizer.Clean(item.Name)
		if name == "" {
			return nil, ErrBlankText
		}

		pos, ok := index[name]
		if !ok {
			pos = len(categories)
			index[name] = pos
			categories = append(categories, models.EvaluationCategory{Name: name, DisplayOrder: item.DisplayOrder})
		}

		for _, question := range item.Questions {
			text := s.sanitizer.Clean(question.Text)
			if text == "" {
				return nil, ErrBlankText
			}
			categories[pos].Questions = append(categories[pos].Questions, models.EvaluationQuestion{
				Text:         text,
				DisplayOrder: question.DisplayOrder,
			})
		}
	}

	return categories, nil
}

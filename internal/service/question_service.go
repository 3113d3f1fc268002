package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/repository"
)

var (
	// ErrCategoryExists indicates the category name is already taken.
	ErrCategoryExists = errors.New("evaluation category already exists")
	// ErrCategoryNotFound indicates the referenced category does not exist.
	ErrCategoryNotFound = errors.New("evaluation category not found")
	// ErrQuestionNotFound indicates the question does not exist.
	ErrQuestionNotFound = errors.New("evaluation question not found")
	// ErrBlankText indicates a name or text that is empty once trimmed.
	ErrBlankText = errors.New("text must not be blank")
)

// QuestionService manages the evaluation form.
type QuestionService interface {
	Catalog(ctx context.Context) ([]dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, payload dto.CategoryCreateRequest, actor ActivityActor) (uint, error)
	CreateQuestion(ctx context.Context, payload dto.QuestionCreateRequest, actor ActivityActor) (uint, error)
	DeleteCategory(ctx context.Context, id uint, actor ActivityActor) error
	DeleteQuestion(ctx context.Context, id uint, actor ActivityActor) error
}

type questionService struct {
	repo      repository.QuestionRepository
	validator *validator.Validate
	activity  ActivityEnqueuer
	sanitizer *plainText
	logger    zerolog.Logger
}

// NewQuestionService constructs the question catalog service.
func NewQuestionService(repo repository.QuestionRepository, validator *validator.Validate, activity ActivityEnqueuer, logger zerolog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		sanitizer: newPlainText(),
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) Catalog(ctx context.Context) ([]dto.CategoryResponse, error) {
	rows, err := s.repo.ListCatalogRows(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]dto.CategoryResponse, 0)
	index := map[uint]int{}
	for _, row := range rows {
		pos, ok := index[row.CategoryID]
		if !ok {
			pos = len(categories)
			index[row.CategoryID] = pos
			categories = append(categories, dto.CategoryResponse{
				ID:           row.CategoryID,
				Name:         row.CategoryName,
				DisplayOrder: row.CategoryOrder,
				Questions:    []dto.QuestionResponse{},
			})
		}
		if row.QuestionID == nil {
			continue
		}

		question := dto.QuestionResponse{ID: *row.QuestionID}
		if row.QuestionText != nil {
			question.Text = *row.QuestionText
		}
		if row.QuestionOrder != nil {
			question.DisplayOrder = *row.QuestionOrder
		}
		categories[pos].Questions = append(categories[pos].Questions, question)
	}

	return categories, nil
}

func (s *questionService) CreateCategory(ctx context.Context, payload dto.CategoryCreateRequest, actor ActivityActor) (uint, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}
	name := s.sanitizer.Clean(payload.Name)
	if name == "" {
		return 0, ErrBlankText
	}

	category := models.EvaluationCategory{Name: name}
	if payload.DisplayOrder != nil {
		category.DisplayOrder = *payload.DisplayOrder
	}

	if err := s.repo.CreateCategory(ctx, &category); err != nil {
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return 0, ErrCategoryExists
		}
		return 0, err
	}

	s.record(actor, ActionCategoryCreated, "evaluation_category", category.ID, map[string]interface{}{"name": name})
	return category.ID, nil
}

func (s *questionService) CreateQuestion(ctx context.Context, payload dto.QuestionCreateRequest, actor ActivityActor) (uint, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}
	text := s.sanitizer.Clean(payload.Text)
	if text == "" {
		return 0, ErrBlankText
	}

	exists, err := s.repo.CategoryExists(ctx, payload.CategoryID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrCategoryNotFound
	}

	question := models.EvaluationQuestion{CategoryID: payload.CategoryID, Text: text}
	if payload.DisplayOrder != nil {
		question.DisplayOrder = *payload.DisplayOrder
	}

	if err := s.repo.CreateQuestion(ctx, &question); err != nil {
		return 0, err
	}

	s.record(actor, ActionQuestionCreated, "evaluation_question", question.ID, map[string]interface{}{"category_id": payload.CategoryID})
	return question.ID, nil
}

func (s *questionService) DeleteCategory(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	s.record(actor, ActionCategoryDeleted, "evaluation_category", id, nil)
	return nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}
	s.record(actor, ActionQuestionDeleted, "evaluation_question", id, nil)
	return nil
}

func (s *questionService) record(actor ActivityActor, action, entityType string, id uint, metadata map[string]interface{}) {
	enqueueActivity(s.activity, actor, action, entityType, id, metadata)
}

func enqueueActivity(activity ActivityEnqueuer, actor ActivityActor, action, entityType string, id uint, metadata map[string]interface{}) {
	if activity == nil {
		return
	}
	entityID := id
	activity.Enqueue(ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Metadata:   metadata,
	})
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/models"
)

// ErrDuplicateCategory reports a category name that is already taken.
var ErrDuplicateCategory = errors.New("evaluation category already exists")

// QuestionCatalogRow is a category left-joined with one of its questions. The
// question columns are nil for categories without questions.
type QuestionCatalogRow struct {
	CategoryID    uint
	CategoryName  string
	CategoryOrder int
	QuestionID    *uint
	QuestionText  *string
	QuestionOrder *int
}

// QuestionRepository manages evaluation categories and questions.
type QuestionRepository interface {
	ListCatalogRows(ctx context.Context) ([]QuestionCatalogRow, error)
	CreateCategory(ctx context.Context, category *models.EvaluationCategory) error
	CategoryExists(ctx context.Context, id uint) (bool, error)
	CreateQuestion(ctx context.Context, question *models.EvaluationQuestion) error
	DeleteCategory(ctx context.Context, id uint) error
	DeleteQuestion(ctx context.Context, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository constructs the question catalog repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) ListCatalogRows(ctx context.Context) ([]QuestionCatalogRow, error) {
	const query = `
		SELECT
			c.id AS category_id,
			c.name AS category_name,
			c.display_order AS category_order,
			q.id AS question_id,
			q.text AS question_text,
			q.display_order AS question_order
		FROM evaluation_categories c
		LEFT JOIN evaluation_questions q ON q.category_id = c.id
		ORDER BY c.display_order ASC, c.id ASC, q.display_order ASC, q.id ASC`

	var rows []QuestionCatalogRow
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *questionRepository) CreateCategory(ctx context.Context, category *models.EvaluationCategory) error {
	err := r.db.WithContext(ctx).Omit("Questions").Create(category).Error
	if IsDuplicateKey(err) {
		return ErrDuplicateCategory
	}
	return err
}

func (r *questionRepository) CategoryExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EvaluationCategory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *questionRepository) CreateQuestion(ctx context.Context, question *models.EvaluationQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

// DeleteCategory removes a category together with its questions.
func (r *questionRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.EvaluationQuestion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.EvaluationCategory{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *questionRepository) DeleteQuestion(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.EvaluationQuestion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

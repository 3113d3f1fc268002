package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/evalink-api/internal/models"
)

// CatalogSeeder loads a predefined evaluation form in bulk.
type CatalogSeeder interface {
	UpsertCatalog(ctx context.Context, categories []models.EvaluationCategory) (int64, error)
}

// NewCatalogSeeder constructs the catalog seeder.
func NewCatalogSeeder(db *gorm.DB) CatalogSeeder {
	return &questionRepository{db: db}
}

// UpsertCatalog inserts or reorders categories by name and adds the questions a
// category does not already have. Existing questions are matched on their text and
// left untouched. The whole batch runs in one transaction.
func (r *questionRepository) UpsertCatalog(ctx context.Context, categories []models.EvaluationCategory) (int64, error) {
	if len(categories) == 0 {
		return 0, nil
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, category := range categories {
			row := models.EvaluationCategory{Name: category.Name, DisplayOrder: category.DisplayOrder}
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"display_order"}),
			}).Omit("Questions").Create(&row)
			if result.Error != nil {
				return result.Error
			}
			affected += result.RowsAffected

			var stored models.EvaluationCategory
			if err := tx.Where("name = ?", category.Name).First(&stored).Error; err != nil {
				return err
			}

			for _, question := range category.Questions {
				var count int64
				if err := tx.Model(&models.EvaluationQuestion{}).
					Where("category_id = ? AND text = ?", stored.ID, question.Text).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}

				created := models.EvaluationQuestion{CategoryID: stored.ID, Text: question.Text, DisplayOrder: question.DisplayOrder}
				if err := tx.Create(&created).Error; err != nil {
					return err
				}
				affected++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

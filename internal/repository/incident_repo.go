package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/models"
)

// IncidentRepository stores incident reports.
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	List(ctx context.Context, status string) ([]models.Incident, error)
	UpdateStatus(ctx context.Context, id uint, status string) (models.Incident, error)
}

type incidentRepository struct {
	db *gorm.DB
}

// NewIncidentRepository constructs the incident repository.
func NewIncidentRepository(db *gorm.DB) IncidentRepository {
	return &incidentRepository{db: db}
}

func (r *incidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	return r.db.WithContext(ctx).Create(incident).Error
}

func (r *incidentRepository) List(ctx context.Context, status string) ([]models.Incident, error) {
	query := r.db.WithContext(ctx).Model(&models.Incident{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var incidents []models.Incident
	if err := query.Order("created_at DESC").Order("id DESC").Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *incidentRepository) UpdateStatus(ctx context.Context, id uint, status string) (models.Incident, error) {
	result := r.db.WithContext(ctx).Model(&models.Incident{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return models.Incident{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Incident{}, gorm.ErrRecordNotFound
	}

	var incident models.Incident
	if err := r.db.WithContext(ctx).First(&incident, id).Error; err != nil {
		return models.Incident{}, err
	}
	return incident, nil
}

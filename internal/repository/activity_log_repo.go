package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/models"
)

// ActivityLogQuery selects a window of the audit trail. Action is either an exact
// action such as "evaluation.submitted" or an action family such as "evaluation",
// which matches every action in that family.
type ActivityLogQuery struct {
	Offset     int
	Limit      int
	ActorID    *uint
	Action     string
	EntityType string
	Since      *time.Time
}

// ActivityLogRepository persists audit trail events.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, query ActivityLogQuery) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns the matching entries newest first along with the total match count.
func (r *activityLogRepository) List(ctx context.Context, query ActivityLogQuery) ([]models.ActivityLog, int64, error) {
	matching := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Scopes(activityFilter(query))

	var total int64
	if err := matching.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.ActivityLog{}, 0, nil
	}

	page := matching.Order("created_at DESC").Order("id DESC")
	if query.Limit > 0 {
		page = page.Limit(query.Limit)
	}
	if query.Offset > 0 {
		page = page.Offset(query.Offset)
	}

	var entries []models.ActivityLog
	if err := page.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func activityFilter(query ActivityLogQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if query.ActorID != nil {
			db = db.Where("actor_id = ?", *query.ActorID)
		}
		if action := strings.ToLower(query.Action); action != "" {
			if strings.Contains(action, ".") {
				db = db.Where("action = ?", action)
			} else {
				db = db.Where("action LIKE ?", action+".%")
			}
		}
		if query.EntityType != "" {
			db = db.Where("entity_type = ?", strings.ToLower(query.EntityType))
		}
		if query.Since != nil {
			db = db.Where("created_at >= ?", query.Since.UTC())
		}
		return db
	}
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable events such as evaluation submissions and catalog changes.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Department{},
		&Section{},
		&Subject{},
		&FacultyLoad{},
		&Enrollment{},
		&EvaluationCategory{},
		&EvaluationQuestion{},
		&Evaluation{},
		&EvaluationAnswer{},
		&Incident{},
		&ActivityLog{},
	}
}

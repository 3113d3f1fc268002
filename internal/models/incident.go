package models

import "time"

// Incident statuses.
const (
	IncidentStatusOpen       = "Open"
	IncidentStatusInProgress = "In Progress"
	IncidentStatusResolved   = "Resolved"
)

// Incident is a problem report raised from one of the dashboards.
type Incident struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ReporterID  *uint     `gorm:"index" json:"reporter_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:32;not null;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

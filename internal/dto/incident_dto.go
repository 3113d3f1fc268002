package dto

import (
	"time"

	"github.com/noah-isme/evalink-api/internal/models"
)

// IncidentCreateRequest reports an incident.
type IncidentCreateRequest struct {
	ReporterID  *uint  `json:"reporter_id"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// IncidentStatusRequest changes the status of an incident.
type IncidentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// IncidentResponse serializes an incident.
type IncidentResponse struct {
	ID          uint      `json:"id"`
	ReporterID  *uint     `json:"reporter_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewIncidentResponse converts an incident model into a DTO.
func NewIncidentResponse(incident models.Incident) IncidentResponse {
	return IncidentResponse{
		ID:          incident.ID,
		ReporterID:  incident.ReporterID,
		Title:       incident.Title,
		Description: incident.Description,
		Status:      incident.Status,
		CreatedAt:   incident.CreatedAt,
		UpdatedAt:   incident.UpdatedAt,
	}
}

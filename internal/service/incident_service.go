package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/repository"
)

var (
	// ErrIncidentNotFound indicates the incident does not exist.
	ErrIncidentNotFound = errors.New("incident not found")
	// ErrInvalidIncidentStatus indicates a status outside Open, In Progress and Resolved.
	ErrInvalidIncidentStatus = errors.New("invalid incident status")
)

var incidentStatuses = map[string]string{
	"open":        models.IncidentStatusOpen,
	"in progress": models.IncidentStatusInProgress,
	"resolved":    models.IncidentStatusResolved,
}

// IncidentService handles incident reports raised from the dashboards.
type IncidentService interface {
	Create(ctx context.Context, payload dto.IncidentCreateRequest, actor ActivityActor) (dto.IncidentResponse, error)
	List(ctx context.Context, status string) ([]dto.IncidentResponse, error)
	UpdateStatus(ctx context.Context, id uint, payload dto.IncidentStatusRequest, actor ActivityActor) (dto.IncidentResponse, error)
}

type incidentService struct {
	repo      repository.IncidentRepository
	validator *validator.Validate
	activity  ActivityEnqueuer
	sanitizer *plainText
	logger    zerolog.Logger
}

// NewIncidentService constructs the incident service.
func NewIncidentService(repo repository.IncidentRepository, validator *validator.Validate, activity ActivityEnqueuer, logger zerolog.Logger) IncidentService {
	return &incidentService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		sanitizer: newPlainText(),
		logger:    logger.With().Str("component", "incident_service").Logger(),
	}
}

func (s *incidentService) Create(ctx context.Context, payload dto.IncidentCreateRequest, actor ActivityActor) (dto.IncidentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.IncidentResponse{}, err
	}
	title := s.sanitizer.Clean(payload.Title)
	if title == "" {
		return dto.IncidentResponse{}, ErrBlankText
	}

	incident := models.Incident{
		ReporterID:  payload.ReporterID,
		Title:       title,
		Description: s.sanitizer.Clean(payload.Description),
		Status:      models.IncidentStatusOpen,
	}
	if incident.ReporterID == nil && actor.ID != 0 {
		reporter := actor.ID
		incident.ReporterID = &reporter
	}

	if err := s.repo.Create(ctx, &incident); err != nil {
		return dto.IncidentResponse{}, err
	}

	enqueueActivity(s.activity, actor, ActionIncidentReported, "incident", incident.ID, map[string]interface{}{"title": title})
	return dto.NewIncidentResponse(incident), nil
}

func (s *incidentService) List(ctx context.Context, status string) ([]dto.IncidentResponse, error) {
	filter := ""
	if strings.TrimSpace(status) != "" {
		normalized, ok := normalizeIncidentStatus(status)
		if !ok {
			return nil, ErrInvalidIncidentStatus
		}
		filter = normalized
	}

	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.IncidentResponse, 0, len(incidents))
	for _, incident := range incidents {
		responses = append(responses, dto.NewIncidentResponse(incident))
	}
	return responses, nil
}

func (s *incidentService) UpdateStatus(ctx context.Context, id uint, payload dto.IncidentStatusRequest, actor ActivityActor) (dto.IncidentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.IncidentResponse{}, err
	}
	status, ok := normalizeIncidentStatus(payload.Status)
	if !ok {
		return dto.IncidentResponse{}, ErrInvalidIncidentStatus
	}

	incident, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.IncidentResponse{}, ErrIncidentNotFound
		}
		return dto.IncidentResponse{}, err
	}

	enqueueActivity(s.activity, actor, ActionIncidentUpdated, "incident", id, map[string]interface{}{"status": status})
	return dto.NewIncidentResponse(incident), nil
}

func normalizeIncidentStatus(status string) (string, bool) {
	normalized, ok := incidentStatuses[strings.ToLower(strings.Join(strings.Fields(status), " "))]
	return normalized, ok
}

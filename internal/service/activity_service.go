package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/repository"
)

// Activity actions recorded by the services. The part before the dot is the
// action family the activity log can be filtered by.
const (
	ActionEvaluationSubmitted = "evaluation.submitted"
	ActionCategoryCreated     = "evaluation_category.created"
	ActionCategoryDeleted     = "evaluation_category.deleted"
	ActionQuestionCreated     = "evaluation_question.created"
	ActionQuestionDeleted     = "evaluation_question.deleted"
	ActionQuestionsSeeded     = "evaluation_question.seeded"
	ActionUserCreated         = "user.created"
	ActionUserDeleted         = "user.deleted"
	ActionCatalogCreated      = "catalog.created"
	ActionCatalogDeleted      = "catalog.deleted"
	ActionIncidentReported    = "incident.reported"
	ActionIncidentUpdated     = "incident.status_changed"
)

var errIncompleteActivity = errors.New("activity requires an action and an entity type")

// ActivityActor identifies who triggered an activity. A zero ID with an empty role
// is recorded as the system.
type ActivityActor struct {
	ID   uint
	Role string
}

// ActivityEntry is an activity waiting to be written to the audit trail.
type ActivityEntry struct {
	ActorID    uint
	ActorRole  string
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// toModel normalizes the entry into a persistable row. Secrets in the metadata
// are masked.
func (e ActivityEntry) toModel() (models.ActivityLog, error) {
	action := strings.ToLower(strings.TrimSpace(e.Action))
	entityType := strings.ToLower(strings.TrimSpace(e.EntityType))
	if action == "" || entityType == "" {
		return models.ActivityLog{}, errIncompleteActivity
	}

	return models.ActivityLog{
		ActorID:    e.ActorID,
		ActorRole:  normalizeRole(e.ActorRole),
		Action:     action,
		EntityType: entityType,
		EntityID:   e.EntityID,
		Metadata:   maskSecrets(e.Metadata),
	}, nil
}

// ActivityRecorder writes entries to the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
}

// ActivityService records and pages through the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	model, err := entry.toModel()
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", model.Action).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	query := repository.ActivityLogQuery{
		Limit:      req.PageSize,
		Action:     strings.TrimSpace(req.Action),
		EntityType: strings.TrimSpace(req.EntityType),
		Since:      req.Since,
	}
	if req.PageSize > 0 {
		query.Offset = (page - 1) * req.PageSize
	}
	if req.ActorID > 0 {
		actorID := req.ActorID
		query.ActorID = &actorID
	}

	entries, total, err := s.repo.List(ctx, query)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, len(entries))
	for i, entry := range entries {
		items[i] = dto.NewActivityResponse(entry)
	}

	return dto.ActivityListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   req.PageSize,
			TotalItems: total,
			TotalPages: pageCount(total, req.PageSize),
		},
	}, nil
}

func pageCount(total int64, size int) int {
	if size <= 0 || total == 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

func maskSecrets(metadata map[string]interface{}) datatypes.JSONMap {
	masked := make(datatypes.JSONMap, len(metadata))
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			value = "***"
		}
		masked[key] = value
	}
	return masked
}

func normalizeRole(role string) string {
	if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
		return role
	}
	return "system"
}

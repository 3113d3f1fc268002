package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/observability"
	"github.com/noah-isme/evalink-api/internal/repository"
)

const reportCacheKey = "evaluations:report"

var (
	// ErrMissingEvaluationData indicates a submission without student, faculty or subject.
	ErrMissingEvaluationData = errors.New("missing required evaluation data")
	// ErrNoAnswers indicates a submission without any answer.
	ErrNoAnswers = errors.New("no answers provided")
	// ErrInvalidQuestionID indicates an answer keyed by something other than a positive integer.
	ErrInvalidQuestionID = errors.New("invalid question identifier")
	// ErrDuplicateQuestion indicates two answer keys naming the same question.
	ErrDuplicateQuestion = errors.New("question answered more than once")
	// ErrEvaluationExists indicates the student already evaluated the subject.
	ErrEvaluationExists = errors.New("subject already evaluated")
	// ErrUnknownReference indicates a student, faculty, subject or question id with no matching record.
	ErrUnknownReference = errors.New("unknown student, faculty, subject or question")
)

// EvaluationService accepts submissions and produces the evaluation reports.
type EvaluationService interface {
	Submit(ctx context.Context, req dto.EvaluationSubmitRequest, actor ActivityActor) (uint, error)
	FacultySummary(ctx context.Context, facultyID uint) ([]dto.FacultySubjectSummary, error)
	Report(ctx context.Context) ([]dto.EvaluationReportItem, error)
	DailyCounts(ctx context.Context, days int) ([]dto.DailyEvaluationCount, error)
	DailySeries(ctx context.Context, days int) ([]dto.DailyEvaluationCount, error)
}

type evaluationService struct {
	repo      repository.EvaluationRepository
	activity  ActivityEnqueuer
	cache     *redis.Client
	cacheTTL  time.Duration
	sanitizer *plainText
	tracer    trace.Tracer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEvaluationService constructs the evaluation service. cache and activity may be nil.
func NewEvaluationService(repo repository.EvaluationRepository, activity ActivityEnqueuer, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		repo:      repo,
		activity:  activity,
		cache:     cache,
		cacheTTL:  ttl,
		sanitizer: newPlainText(),
		tracer:    otel.Tracer("github.com/noah-isme/evalink-api/internal/service/evaluation"),
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
		now:       time.Now,
	}
}

func (s *evaluationService) Submit(ctx context.Context, req dto.EvaluationSubmitRequest, actor ActivityActor) (uint, error) {
	if isZero(req.StudentID) || isZero(req.FacultyID) || isZero(req.SubjectID) || req.Answers == nil {
		return 0, ErrMissingEvaluationData
	}
	if len(req.Answers) == 0 {
		return 0, ErrNoAnswers
	}

	answers, err := buildAnswers(req.Answers)
	if err != nil {
		return 0, err
	}

	evaluation := models.Evaluation{
		StudentID: *req.StudentID,
		FacultyID: *req.FacultyID,
		SubjectID: *req.SubjectID,
		SectionID: req.SectionID,
	}
	if req.SectionID != nil && *req.SectionID == 0 {
		evaluation.SectionID = nil
	}
	if req.Comments != nil {
		evaluation.Comments = s.sanitizer.Clean(*req.Comments)
	}

	ctx, span := s.tracer.Start(ctx, "evaluation.submit")
	span.SetAttributes(
		attribute.Int64("evaluation.faculty_id", int64(evaluation.FacultyID)),
		attribute.Int64("evaluation.subject_id", int64(evaluation.SubjectID)),
		attribute.Int("evaluation.answers", len(answers)),
	)
	defer span.End()

	if err := s.repo.CreateWithAnswers(ctx, &evaluation, answers); err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, repository.ErrDuplicateEvaluation):
			observability.EvaluationFailures().WithLabelValues("duplicate").Inc()
			return 0, ErrEvaluationExists
		case errors.Is(err, repository.ErrEmptyAnswers):
			observability.EvaluationFailures().WithLabelValues("validation").Inc()
			return 0, ErrNoAnswers
		case errors.Is(err, repository.ErrUnknownReference):
			observability.EvaluationFailures().WithLabelValues("validation").Inc()
			return 0, ErrUnknownReference
		default:
			span.SetStatus(codes.Error, "create_evaluation_failed")
			observability.EvaluationFailures().WithLabelValues("storage").Inc()
			s.logger.Error().Err(err).
				Uint("student_id", evaluation.StudentID).
				Uint("subject_id", evaluation.SubjectID).
				Msg("failed to store evaluation")
			return 0, fmt.Errorf("store evaluation: %w", err)
		}
	}

	observability.EvaluationsSubmitted().Inc()
	s.invalidate(ctx, facultyCacheKey(evaluation.FacultyID), reportCacheKey)
	s.enqueueSubmitted(actor, evaluation, len(answers))

	return evaluation.ID, nil
}

func (s *evaluationService) FacultySummary(ctx context.Context, facultyID uint) ([]dto.FacultySubjectSummary, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.faculty_summary")
	span.SetAttributes(attribute.Int64("evaluation.faculty_id", int64(facultyID)))
	defer span.End()

	key := facultyCacheKey(facultyID)
	var cached []dto.FacultySubjectSummary
	if s.readCache(ctx, key, &cached) {
		span.SetAttributes(attribute.Bool("evaluation.cache_hit", true))
		return cached, nil
	}

	rows, err := s.repo.ListFacultyRows(ctx, facultyID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_faculty_rows_failed")
		return nil, err
	}

	summaries := AggregateFacultyRows(rows)
	span.SetAttributes(attribute.Int("evaluation.subjects", len(summaries)))
	s.writeCache(ctx, key, summaries)

	return summaries, nil
}

func (s *evaluationService) Report(ctx context.Context) ([]dto.EvaluationReportItem, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.report")
	defer span.End()

	var cached []dto.EvaluationReportItem
	if s.readCache(ctx, reportCacheKey, &cached) {
		span.SetAttributes(attribute.Bool("evaluation.cache_hit", true))
		return cached, nil
	}

	rows, err := s.repo.ListReport(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_report_failed")
		return nil, err
	}

	items := make([]dto.EvaluationReportItem, 0, len(rows))
	for _, row := range rows {
		item := dto.EvaluationReportItem{
			ID:        row.ID,
			StudentID: row.StudentID,
			FacultyID: row.FacultyID,
			Course:    row.Course,
			Rating:    row.Rating,
			CreatedAt: row.CreatedAt,
		}
		if row.Feedback != nil {
			item.Feedback = *row.Feedback
		}
		items = append(items, item)
	}

	s.writeCache(ctx, reportCacheKey, items)
	return items, nil
}

func (s *evaluationService) DailyCounts(ctx context.Context, days int) ([]dto.DailyEvaluationCount, error) {
	days = NormalizeStatsDays(days)
	since := startOfDay(s.now()).AddDate(0, 0, -days)

	rows, err := s.repo.CountDaily(ctx, since)
	if err != nil {
		return nil, err
	}

	counts := make([]dto.DailyEvaluationCount, 0, len(rows))
	for _, row := range rows {
		date := row.EvaluationDate
		if len(date) > len(dayLayout) {
			date = date[:len(dayLayout)]
		}
		counts = append(counts, dto.DailyEvaluationCount{EvaluationDate: date, EvaluationCount: row.EvaluationCount})
	}
	return counts, nil
}

func (s *evaluationService) DailySeries(ctx context.Context, days int) ([]dto.DailyEvaluationCount, error) {
	counts, err := s.DailyCounts(ctx, days)
	if err != nil {
		return nil, err
	}
	return FillDailySeries(counts, days, s.now()), nil
}

func (s *evaluationService) enqueueSubmitted(actor ActivityActor, evaluation models.Evaluation, answers int) {
	if s.activity == nil {
		return
	}
	if actor.Role == "" {
		actor = ActivityActor{ID: evaluation.StudentID, Role: models.RoleStudent}
	}

	id := evaluation.ID
	metadata := map[string]interface{}{
		"student_id": evaluation.StudentID,
		"faculty_id": evaluation.FacultyID,
		"subject_id": evaluation.SubjectID,
		"answers":    answers,
	}
	if evaluation.SectionID != nil {
		metadata["section_id"] = *evaluation.SectionID
	}

	s.activity.Enqueue(ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     ActionEvaluationSubmitted,
		EntityType: "evaluation",
		EntityID:   &id,
		Metadata:   metadata,
	})
}

func (s *evaluationService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read evaluation cache")
		}
		observability.ReportCacheLookups().WithLabelValues("miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		observability.ReportCacheLookups().WithLabelValues("miss").Inc()
		return false
	}
	observability.ReportCacheLookups().WithLabelValues("hit").Inc()
	return true
}

func (s *evaluationService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store evaluation cache")
	}
}

func (s *evaluationService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate evaluation cache")
	}
}

// buildAnswers converts the answers map into rows ordered by question id.
func buildAnswers(raw map[string]int) ([]models.EvaluationAnswer, error) {
	seen := make(map[uint]struct{}, len(raw))
	answers := make([]models.EvaluationAnswer, 0, len(raw))
	for key, rating := range raw {
		parsed, err := strconv.ParseUint(strings.TrimSpace(key), 10, 32)
		if err != nil || parsed == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQuestionID, key)
		}
		id := uint(parsed)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateQuestion, id)
		}
		seen[id] = struct{}{}
		answers = append(answers, models.EvaluationAnswer{QuestionID: id, Rating: rating})
	}

	sort.Slice(answers, func(i, j int) bool { return answers[i].QuestionID < answers[j].QuestionID })
	return answers, nil
}

func facultyCacheKey(facultyID uint) string {
	return fmt.Sprintf("evaluations:faculty:%d", facultyID)
}

func isZero(id *uint) bool {
	return id == nil || *id == 0
}

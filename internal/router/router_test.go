package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/config"
	"github.com/noah-isme/evalink-api/internal/database"
	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/handler"
	"github.com/noah-isme/evalink-api/internal/middleware"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/repository"
	"github.com/noah-isme/evalink-api/internal/router"
	"github.com/noah-isme/evalink-api/internal/service"
)

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	dispatcher *service.ActivityDispatcher
}

func setupApp(t *testing.T) testEnv {
	t.Helper()

	db, err := database.Connect("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	cfg := config.Config{AppName: "EvaLink Test", AppEnv: "test", JWTSecret: "router-secret", JWTTTL: time.Hour}
	logger := zerolog.New(io.Discard)
	validate := validator.New()

	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	dispatcher := service.NewActivityDispatcher(activityService, nil, "", 16, logger)
	dispatcher.Start()
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	userService := service.NewUserService(repository.NewUserRepository(db), validate,
		service.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL),
		service.AdminCredentials{Username: "admin", Password: "admin-pass"}, dispatcher, logger)
	evaluationService := service.NewEvaluationService(repository.NewEvaluationRepository(db), dispatcher, nil, time.Minute, logger)
	questionService := service.NewQuestionService(repository.NewQuestionRepository(db), validate, dispatcher, logger)
	academicService := service.NewAcademicService(repository.NewAcademicRepository(db), validate, dispatcher, logger)
	incidentService := service.NewIncidentService(repository.NewIncidentRepository(db), validate, dispatcher, logger)
	seedService := service.NewSeedService(repository.NewCatalogSeeder(db), validate, true, "seed-token", dispatcher, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, middleware.RateLimit("submit", 100, time.Minute), logger),
		QuestionHandler:   handler.NewQuestionHandler(questionService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		AcademicHandler:   handler.NewAcademicHandler(academicService, logger),
		IncidentHandler:   handler.NewIncidentHandler(incidentService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		SeedHandler:       handler.NewSeedHandler(seedService, logger),
		HealthChecks: map[string]func(context.Context) error{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
	})

	return testEnv{app: app, db: db, dispatcher: dispatcher}
}

func call(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.LoginResponse
	decode(t, resp, &body)
	return body.Token
}

func created(t *testing.T, resp *http.Response) uint {
	t.Helper()
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var body struct {
		ID uint `json:"id"`
	}
	decode(t, resp, &body)
	return body.ID
}

func TestEvaluationLifecycle(t *testing.T) {
	env := setupApp(t)
	app := env.app

	resp := call(t, app, http.MethodGet, "/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "EvaLink Test", resp.Header.Get("X-Application"))

	admin := login(t, app, "admin", "admin-pass")

	for _, user := range []map[string]interface{}{
		{"id": 1001, "name": "Ana", "password": "ana-pass", "role": "student"},
		{"id": 1002, "name": "Ben", "password": "ben-pass", "role": "student"},
		{"id": 2001, "name": "Reyes", "password": "reyes-pass", "role": "faculty"},
	} {
		created(t, call(t, app, http.MethodPost, "/users", admin, user))
	}

	subjectID := created(t, call(t, app, http.MethodPost, "/subjects", admin, map[string]interface{}{"code": "CS101", "name": "Programming"}))
	categoryID := created(t, call(t, app, http.MethodPost, "/evaluation-categories", admin, map[string]interface{}{"name": "Teaching", "display_order": 1}))
	q1 := created(t, call(t, app, http.MethodPost, "/evaluation-questions", admin, map[string]interface{}{"category_id": categoryID, "text": "Explains clearly", "display_order": 1}))
	q2 := created(t, call(t, app, http.MethodPost, "/evaluation-questions", admin, map[string]interface{}{"category_id": categoryID, "text": "Starts on time", "display_order": 2}))
	resp = call(t, app, http.MethodPost, "/student-subjects", admin, map[string]interface{}{"student_id": 1001, "subject_id": subjectID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/evaluation-questions", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var catalog []dto.CategoryResponse
	decode(t, resp, &catalog)
	require.Len(t, catalog, 1)
	require.Len(t, catalog[0].Questions, 2)

	ana := login(t, app, "1001", "ana-pass")
	ben := login(t, app, "1002", "ben-pass")
	reyes := login(t, app, "2001", "reyes-pass")

	answers := func(a, b int) map[string]int {
		return map[string]int{itoa(q1): a, itoa(q2): b}
	}

	resp = call(t, app, http.MethodPost, "/evaluations", ana, map[string]interface{}{
		"student_id": 1001, "faculty_id": 2001, "subject_id": subjectID, "answers": answers(5, 4), "comments": "Great",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/evaluations", ana, map[string]interface{}{
		"student_id": 1001, "faculty_id": 2001, "subject_id": subjectID, "answers": answers(1, 1),
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	var conflict struct {
		Error string `json:"error"`
	}
	decode(t, resp, &conflict)
	require.Equal(t, "You have already evaluated this subject", conflict.Error)

	resp = call(t, app, http.MethodPost, "/evaluations", ben, map[string]interface{}{
		"student_id": 1002, "faculty_id": 2001, "subject_id": subjectID, "answers": map[string]int{},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/evaluations", ben, map[string]interface{}{
		"student_id": 1002, "faculty_id": 2001, "subject_id": subjectID, "answers": answers(3, 4), "comments": "  Great ",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var evaluations, answerRows int64
	require.NoError(t, env.db.Model(&models.Evaluation{}).Count(&evaluations).Error)
	require.NoError(t, env.db.Model(&models.EvaluationAnswer{}).Count(&answerRows).Error)
	require.Equal(t, int64(2), evaluations)
	require.Equal(t, int64(4), answerRows)

	resp = call(t, app, http.MethodGet, "/faculty/2001/evaluations", reyes, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summaries []dto.FacultySubjectSummary
	decode(t, resp, &summaries)
	require.Len(t, summaries, 1)
	require.Equal(t, "4.00", summaries[0].OverallAverage)
	require.Equal(t, 2, summaries[0].TotalEvaluations)
	require.Equal(t, []string{"Great"}, summaries[0].Comments)

	resp = call(t, app, http.MethodGet, "/faculty/2001/evaluations", ana, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/evaluations", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report []dto.EvaluationReportItem
	decode(t, resp, &report)
	require.Len(t, report, 2)
	ratings := map[uint]float64{}
	for _, item := range report {
		ratings[item.StudentID] = item.Rating
		require.Equal(t, "Programming", item.Course)
	}
	require.Equal(t, 4.5, ratings[1001])
	require.Equal(t, 3.5, ratings[1002])

	resp = call(t, app, http.MethodGet, "/evaluations/stats/daily", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var daily []dto.DailyEvaluationCount
	decode(t, resp, &daily)
	require.Len(t, daily, 1)
	require.Equal(t, int64(2), daily[0].EvaluationCount)

	resp = call(t, app, http.MethodGet, "/evaluations/stats/daily?days=5&fill=true", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var series []dto.DailyEvaluationCount
	decode(t, resp, &series)
	require.Len(t, series, 5)
	require.Equal(t, int64(2), series[4].EvaluationCount)

	resp = call(t, app, http.MethodGet, "/users/1001/subjects", ana, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var subjects []dto.StudentSubjectResponse
	decode(t, resp, &subjects)
	require.Len(t, subjects, 1)
	require.True(t, subjects[0].Evaluated)

	resp = call(t, app, http.MethodPost, "/evaluations", admin, map[string]interface{}{
		"student_id": 1002, "faculty_id": 2001, "subject_id": 99999, "answers": answers(2, 2),
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodDelete, "/users/1002", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = call(t, app, http.MethodGet, "/evaluations", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	report = nil
	decode(t, resp, &report)
	require.Len(t, report, 1)
	require.Equal(t, uint(1001), report[0].StudentID)

	require.NoError(t, env.dispatcher.Close(context.Background()))
	var submittedEvents int64
	require.NoError(t, env.db.Model(&models.ActivityLog{}).Where("action = ?", service.ActionEvaluationSubmitted).Count(&submittedEvents).Error)
	require.Equal(t, int64(2), submittedEvents)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t).app

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/evaluations"},
		{http.MethodGet, "/evaluations"},
		{http.MethodGet, "/faculty/1/evaluations"},
		{http.MethodPost, "/evaluation-categories"},
		{http.MethodGet, "/users?role=student"},
		{http.MethodGet, "/activity-logs"},
	} {
		resp := call(t, app, route.method, route.path, "", nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, route.path)
	}

	resp := call(t, app, http.MethodPost, "/login", "", map[string]string{"username": "admin", "password": "wrong"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestSeedCatalogThroughRouter(t *testing.T) {
	app := setupApp(t).app
	payload := map[string]interface{}{
		"categories": []map[string]interface{}{
			{"name": "Teaching", "display_order": 1, "questions": []map[string]interface{}{
				{"text": "Explains clearly", "display_order": 1},
			}},
		},
	}

	resp := call(t, app, http.MethodPost, "/seed/evaluation-catalog", "", payload)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/seed/evaluation-catalog", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Seed-Token", "seed-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/evaluation-questions", "", nil)
	var catalog []dto.CategoryResponse
	decode(t, resp, &catalog)
	require.Len(t, catalog, 1)
	require.Equal(t, "Explains clearly", catalog[0].Questions[0].Text)
}

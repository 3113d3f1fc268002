package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/database"
	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/handler"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/repository"
	"github.com/noah-isme/evalink-api/internal/service"
)

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newAcademicApp(t *testing.T, guard handler.Guard) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := newSQLite(t)
	svc := service.NewAcademicService(repository.NewAcademicRepository(db), validator.New(), nil, zerolog.Nop())
	app := fiber.New()
	handler.NewAcademicHandler(svc, zerolog.Nop()).Register(app, guard)
	return app, db
}

func TestAcademicHandlerSubjectLifecycle(t *testing.T) {
	app, _ := newAcademicApp(t, nil)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/subjects", map[string]interface{}{"code": "CS101", "name": "Programming"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/subjects", map[string]interface{}{"code": "cs101", "name": "Again"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/subjects", map[string]interface{}{"name": "No code"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var failure struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	decodeResponse(t, resp, &failure)
	require.Equal(t, "required", failure.Details["code"])

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/subjects", nil))
	require.NoError(t, err)
	var subjects []dto.SubjectResponse
	decodeResponse(t, resp, &subjects)
	require.Len(t, subjects, 1)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/subjects/99", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAcademicHandlerFacultyLoadCompositeKey(t *testing.T) {
	app, _ := newAcademicApp(t, nil)
	load := map[string]interface{}{"faculty_id": 2001, "subject_id": 1, "section_id": 3}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/faculty-loads", load))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/faculty-loads", load))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/faculty-loads/2001/1/4", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/faculty-loads/2001/1/3", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAcademicHandlerStudentSubjectsOwnership(t *testing.T) {
	app, db := newAcademicApp(t, jwtGuard())

	subject := models.Subject{Code: "CS101", Name: "Programming"}
	require.NoError(t, db.Create(&subject).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: 1001, SubjectID: subject.ID}).Error)

	resp, err := app.Test(bearer(t, jsonRequest(t, http.MethodGet, "/users/1001/subjects", nil), "1001", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var subjects []dto.StudentSubjectResponse
	decodeResponse(t, resp, &subjects)
	require.Len(t, subjects, 1)
	require.False(t, subjects[0].Evaluated)

	resp, err = app.Test(bearer(t, jsonRequest(t, http.MethodGet, "/users/1001/subjects", nil), "1002", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(bearer(t, jsonRequest(t, http.MethodGet, "/departments", nil), "1001", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAcademicHandlerSectionsByYear(t *testing.T) {
	app, db := newAcademicApp(t, nil)

	first, second := 1, 2
	require.NoError(t, db.Create(&models.Section{Name: "BSIT 1B", YearLevel: &first}).Error)
	require.NoError(t, db.Create(&models.Section{Name: "BSIT 1A", YearLevel: &first}).Error)
	require.NoError(t, db.Create(&models.Section{Name: "BSIT 2A", YearLevel: &second}).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/sections/by-year?year=1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var sections []dto.SectionResponse
	decodeResponse(t, resp, &sections)
	require.Len(t, sections, 2)
	require.Equal(t, "BSIT 1A", sections[0].Name)
	require.Equal(t, "BSIT 1B", sections[1].Name)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/sections/by-year", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Year level is required", errorMessage(t, resp))

	for _, query := range []string{"first", "0"} {
		resp, err = app.Test(jsonRequest(t, http.MethodGet, "/sections/by-year?year="+query, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, query)
		require.Equal(t, "Invalid year level", errorMessage(t, resp))
	}

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/sections/by-year?year=4", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &sections)
	require.Empty(t, sections)
}

func TestAcademicHandlerFacultySectionsOwnership(t *testing.T) {
	app, db := newAcademicApp(t, jwtGuard())

	section := models.Section{Name: "BSIT 1A"}
	require.NoError(t, db.Create(&section).Error)
	subject := models.Subject{Code: "CS101", Name: "Programming"}
	require.NoError(t, db.Create(&subject).Error)
	require.NoError(t, db.Create(&models.FacultyLoad{FacultyID: 2001, SubjectID: subject.ID, SectionID: section.ID}).Error)

	resp, err := app.Test(bearer(t, jsonRequest(t, http.MethodGet, "/users/2001/sections", nil), "2001", "faculty"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var sections []dto.FacultySectionResponse
	decodeResponse(t, resp, &sections)
	require.Len(t, sections, 1)
	require.Equal(t, "BSIT 1A", sections[0].Name)
	require.Equal(t, "Programming", sections[0].SubjectName)

	resp, err = app.Test(bearer(t, jsonRequest(t, http.MethodGet, "/users/2001/sections", nil), "2002", "faculty"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(bearer(t, jsonRequest(t, http.MethodGet, "/users/2001/sections", nil), "1001", "student"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(bearer(t, jsonRequest(t, http.MethodGet, "/users/2002/sections", nil), "1", "admin"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &sections)
	require.Empty(t, sections)
}

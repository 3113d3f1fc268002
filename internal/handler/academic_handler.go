package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/service"
	"github.com/noah-isme/evalink-api/internal/utils"
)

// AcademicHandler manages departments, sections, subjects, faculty loads and enrollments.
type AcademicHandler struct {
	service service.AcademicService
	logger  zerolog.Logger
}

// NewAcademicHandler constructs the handler.
func NewAcademicHandler(service service.AcademicService, logger zerolog.Logger) *AcademicHandler {
	return &AcademicHandler{
		service: service,
		logger:  logger.With().Str("component", "academic_handler").Logger(),
	}
}

// Register wires the academic catalog routes.
func (h *AcademicHandler) Register(router fiber.Router, guard Guard) {
	admin := guard.allow(adminOnly...)

	router.Post("/departments", admin, h.createDepartment)
	router.Get("/departments", admin, h.listDepartments)
	router.Delete("/departments/:id", admin, h.deleteDepartment)

	router.Post("/sections", admin, h.createSection)
	router.Get("/sections", admin, h.listSections)
	router.Get("/sections/by-year", admin, h.sectionsByYear)
	router.Delete("/sections/:id", admin, h.deleteSection)

	router.Post("/subjects", admin, h.createSubject)
	router.Get("/subjects", admin, h.listSubjects)
	router.Delete("/subjects/:id", admin, h.deleteSubject)

	router.Post("/faculty-loads", admin, h.createFacultyLoad)
	router.Get("/faculty-loads", admin, h.listFacultyLoads)
	router.Delete("/faculty-loads/:facultyId/:subjectId/:sectionId", admin, h.deleteFacultyLoad)

	router.Post("/student-subjects", admin, h.createEnrollment)
	router.Get("/student-subjects", admin, h.listEnrollments)
	router.Delete("/student-subjects/:studentId/:subjectId", admin, h.deleteEnrollment)

	router.Get("/users/:id/subjects", guard.allow(models.RoleStudent, models.RoleAdmin), h.studentSubjects)
	router.Get("/users/:id/sections", guard.allow(models.RoleFaculty, models.RoleAdmin), h.facultySections)
}

func (h *AcademicHandler) createDepartment(c *fiber.Ctx) error {
	var payload dto.DepartmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	id, err := h.service.CreateDepartment(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return h.fail(c, err, "department")
	}
	return utils.SendCreated(c, fiber.StatusCreated, "Department created successfully", id)
}

func (h *AcademicHandler) listDepartments(c *fiber.Ctx) error {
	departments, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return h.fail(c, err, "departments")
	}
	return utils.List(c, departments)
}

func (h *AcademicHandler) deleteDepartment(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid department id")
	}
	if err := h.service.DeleteDepartment(c.UserContext(), id, activityActorFromContext(c)); err != nil {
		return h.fail(c, err, "department")
	}
	return utils.SendMessage(c, fiber.StatusOK, "Department deleted successfully")
}

func (h *AcademicHandler) createSection(c *fiber.Ctx) error {
	var payload dto.SectionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	id, err := h.service.CreateSection(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return h.fail(c, err, "section")
	}
	return utils.SendCreated(c, fiber.StatusCreated, "Section created successfully", id)
}

func (h *AcademicHandler) listSections(c *fiber.Ctx) error {
	sections, err := h.service.ListSections(c.UserContext())
	if err != nil {
		return h.fail(c, err, "sections")
	}
	return utils.List(c, sections)
}

func (h *AcademicHandler) sectionsByYear(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "Year level is required")
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid year level")
	}

	sections, err := h.service.SectionsByYear(c.UserContext(), year)
	if err != nil {
		return h.fail(c, err, "sections")
	}
	return utils.List(c, sections)
}

func (h *AcademicHandler) deleteSection(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid section id")
	}
	if err := h.service.DeleteSection(c.UserContext(), id, activityActorFromContext(c)); err != nil {
		return h.fail(c, err, "section")
	}
	return utils.SendMessage(c, fiber.StatusOK, "Section deleted successfully")
}

func (h *AcademicHandler) createSubject(c *fiber.Ctx) error {
	var payload dto.SubjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	id, err := h.service.CreateSubject(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return h.fail(c, err, "subject")
	}
	return utils.SendCreated(c, fiber.StatusCreated, "Subject created successfully", id)
}

func (h *AcademicHandler) listSubjects(c *fiber.Ctx) error {
	subjects, err := h.service.ListSubjects(c.UserContext())
	if err != nil {
		return h.fail(c, err, "subjects")
	}
	return utils.List(c, subjects)
}

func (h *AcademicHandler) deleteSubject(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid subject id")
	}
	if err := h.service.DeleteSubject(c.UserContext(), id, activityActorFromContext(c)); err != nil {
		return h.fail(c, err, "subject")
	}
	return utils.SendMessage(c, fiber.StatusOK, "Subject deleted successfully")
}

func (h *AcademicHandler) createFacultyLoad(c *fiber.Ctx) error {
	var payload dto.FacultyLoadCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	key, err := h.service.CreateFacultyLoad(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return h.fail(c, err, "faculty load")
	}
	return utils.SendCreated(c, fiber.StatusCreated, "Faculty load assigned successfully", key)
}

func (h *AcademicHandler) listFacultyLoads(c *fiber.Ctx) error {
	loads, err := h.service.ListFacultyLoads(c.UserContext())
	if err != nil {
		return h.fail(c, err, "faculty loads")
	}
	return utils.List(c, loads)
}

func (h *AcademicHandler) deleteFacultyLoad(c *fiber.Ctx) error {
	facultyID, okFaculty := parseIDParam(c, "facultyId")
	subjectID, okSubject := parseIDParam(c, "subjectId")
	sectionID, okSection := parseIDParam(c, "sectionId")
	if !okFaculty || !okSubject || !okSection {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid faculty load key")
	}

	key := models.FacultyLoadKey{FacultyID: facultyID, SubjectID: subjectID, SectionID: sectionID}
	if err := h.service.DeleteFacultyLoad(c.UserContext(), key, activityActorFromContext(c)); err != nil {
		return h.fail(c, err, "faculty load")
	}
	return utils.SendMessage(c, fiber.StatusOK, "Faculty load removed successfully")
}

func (h *AcademicHandler) createEnrollment(c *fiber.Ctx) error {
	var payload dto.EnrollmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	key, err := h.service.CreateEnrollment(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		return h.fail(c, err, "enrollment")
	}
	return utils.SendCreated(c, fiber.StatusCreated, "Student enrolled successfully", key)
}

func (h *AcademicHandler) listEnrollments(c *fiber.Ctx) error {
	enrollments, err := h.service.ListEnrollments(c.UserContext())
	if err != nil {
		return h.fail(c, err, "enrollments")
	}
	return utils.List(c, enrollments)
}

func (h *AcademicHandler) deleteEnrollment(c *fiber.Ctx) error {
	studentID, okStudent := parseIDParam(c, "studentId")
	subjectID, okSubject := parseIDParam(c, "subjectId")
	if !okStudent || !okSubject {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid enrollment key")
	}

	key := models.EnrollmentKey{StudentID: studentID, SubjectID: subjectID}
	if err := h.service.DeleteEnrollment(c.UserContext(), key, activityActorFromContext(c)); err != nil {
		return h.fail(c, err, "enrollment")
	}
	return utils.SendMessage(c, fiber.StatusOK, "Enrollment removed successfully")
}

func (h *AcademicHandler) studentSubjects(c *fiber.Ctx) error {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if !ownsResource(c, models.RoleStudent, studentID) {
		return utils.SendError(c, fiber.StatusForbidden, "You can only view your own subjects")
	}

	subjects, err := h.service.StudentSubjects(c.UserContext(), studentID)
	if err != nil {
		return h.fail(c, err, "subjects")
	}
	return utils.List(c, subjects)
}

func (h *AcademicHandler) facultySections(c *fiber.Ctx) error {
	facultyID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if !ownsResource(c, models.RoleFaculty, facultyID) {
		return utils.SendError(c, fiber.StatusForbidden, "You can only view your own sections")
	}

	sections, err := h.service.FacultySections(c.UserContext(), facultyID)
	if err != nil {
		return h.fail(c, err, "sections")
	}
	return utils.List(c, sections)
}

func (h *AcademicHandler) fail(c *fiber.Ctx, err error, entity string) error {
	switch {
	case isValidationError(err):
		return sendValidationError(c, err)
	case errors.Is(err, service.ErrBlankText):
		return utils.SendError(c, fiber.StatusBadRequest, "Required fields must not be blank")
	case errors.Is(err, service.ErrInvalidYearLevel):
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid year level")
	case errors.Is(err, service.ErrRecordExists):
		return utils.SendError(c, fiber.StatusConflict, "The "+entity+" already exists")
	case errors.Is(err, service.ErrRecordInUse):
		return utils.SendError(c, fiber.StatusConflict, "The "+entity+" is still in use")
	case errors.Is(err, service.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "The "+entity+" was not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("entity", entity).Msg("academic catalog request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to process "+entity)
	}
}

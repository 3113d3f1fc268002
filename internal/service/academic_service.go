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
	// ErrRecordExists indicates a catalog entry that would violate a uniqueness rule.
	ErrRecordExists = errors.New("record already exists")
	// ErrRecordInUse indicates a catalog entry that other records still reference.
	ErrRecordInUse = errors.New("record is still in use")
	// ErrRecordNotFound indicates the catalog entry does not exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidYearLevel indicates a year level filter that is not a positive number.
	ErrInvalidYearLevel = errors.New("year level must be a positive number")
)

// AcademicService manages departments, sections, subjects, faculty loads and enrollments.
type AcademicService interface {
	CreateDepartment(ctx context.Context, payload dto.DepartmentCreateRequest, actor ActivityActor) (uint, error)
	ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, id uint, actor ActivityActor) error

	CreateSection(ctx context.Context, payload dto.SectionCreateRequest, actor ActivityActor) (uint, error)
	ListSections(ctx context.Context) ([]dto.SectionResponse, error)
	SectionsByYear(ctx context.Context, yearLevel int) ([]dto.SectionResponse, error)
	FacultySections(ctx context.Context, facultyID uint) ([]dto.FacultySectionResponse, error)
	DeleteSection(ctx context.Context, id uint, actor ActivityActor) error

	CreateSubject(ctx context.Context, payload dto.SubjectCreateRequest, actor ActivityActor) (uint, error)
	ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, id uint, actor ActivityActor) error

	CreateFacultyLoad(ctx context.Context, payload dto.FacultyLoadCreateRequest, actor ActivityActor) (models.FacultyLoadKey, error)
	ListFacultyLoads(ctx context.Context) ([]dto.FacultyLoadResponse, error)
	DeleteFacultyLoad(ctx context.Context, key models.FacultyLoadKey, actor ActivityActor) error

	CreateEnrollment(ctx context.Context, payload dto.EnrollmentCreateRequest, actor ActivityActor) (models.EnrollmentKey, error)
	ListEnrollments(ctx context.Context) ([]dto.EnrollmentResponse, error)
	DeleteEnrollment(ctx context.Context, key models.EnrollmentKey, actor ActivityActor) error

	StudentSubjects(ctx context.Context, studentID uint) ([]dto.StudentSubjectResponse, error)
}

type academicService struct {
	repo      repository.AcademicRepository
	validator *validator.Validate
	activity  ActivityEnqueuer
	sanitizer *plainText
	logger    zerolog.Logger
}

// NewAcademicService constructs the academic catalog service.
func NewAcademicService(repo repository.AcademicRepository, validator *validator.Validate, activity ActivityEnqueuer, logger zerolog.Logger) AcademicService {
	return &academicService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		sanitizer: newPlainText(),
		logger:    logger.With().Str("component", "academic_service").Logger(),
	}
}

func (s *academicService) CreateDepartment(ctx context.Context, payload dto.DepartmentCreateRequest, actor ActivityActor) (uint, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}
	name := s.clean(payload.Name)
	if name == "" {
		return 0, ErrBlankText
	}

	department := models.Department{Name: name}
	if err := s.repo.CreateDepartment(ctx, &department); err != nil {
		return 0, translateCatalogError(err)
	}

	s.created("department", department.ID, map[string]interface{}{"name": name}, actor)
	return department.ID, nil
}

func (s *academicService) ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error) {
	departments, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DepartmentResponse, 0, len(departments))
	for _, department := range departments {
		responses = append(responses, dto.DepartmentResponse{ID: department.ID, Name: department.Name})
	}
	return responses, nil
}

func (s *academicService) DeleteDepartment(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return translateCatalogError(err)
	}
	s.deleted("department", id, nil, actor)
	return nil
}

func (s *academicService) CreateSection(ctx context.Context, payload dto.SectionCreateRequest, actor ActivityActor) (uint, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}
	name := s.clean(payload.Name)
	if name == "" {
		return 0, ErrBlankText
	}

	section := models.Section{Name: name, DepartmentID: payload.DepartmentID, YearLevel: payload.YearLevel}
	if err := s.repo.CreateSection(ctx, &section); err != nil {
		return 0, translateCatalogError(err)
	}

	s.created("section", section.ID, map[string]interface{}{"name": name}, actor)
	return section.ID, nil
}

func (s *academicService) ListSections(ctx context.Context) ([]dto.SectionResponse, error) {
	rows, err := s.repo.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	return sectionResponses(rows), nil
}

func (s *academicService) SectionsByYear(ctx context.Context, yearLevel int) ([]dto.SectionResponse, error) {
	if yearLevel <= 0 {
		return nil, ErrInvalidYearLevel
	}
	rows, err := s.repo.ListSectionsByYear(ctx, yearLevel)
	if err != nil {
		return nil, err
	}
	return sectionResponses(rows), nil
}

func (s *academicService) FacultySections(ctx context.Context, facultyID uint) ([]dto.FacultySectionResponse, error) {
	rows, err := s.repo.ListFacultySections(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.FacultySectionResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.FacultySectionResponse{
			ID:          row.ID,
			Name:        row.Name,
			YearLevel:   row.YearLevel,
			SubjectID:   row.SubjectID,
			SubjectCode: row.SubjectCode,
			SubjectName: row.SubjectName,
		})
	}
	return responses, nil
}

func sectionResponses(rows []repository.SectionRow) []dto.SectionResponse {
	responses := make([]dto.SectionResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.SectionResponse{
			ID:             row.ID,
			Name:           row.Name,
			YearLevel:      row.YearLevel,
			DepartmentID:   row.DepartmentID,
			DepartmentName: row.DepartmentName,
		})
	}
	return responses
}

func (s *academicService) DeleteSection(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.DeleteSection(ctx, id); err != nil {
		return translateCatalogError(err)
	}
	s.deleted("section", id, nil, actor)
	return nil
}

func (s *academicService) CreateSubject(ctx context.Context, payload dto.SubjectCreateRequest, actor ActivityActor) (uint, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}
	code := strings.ToUpper(s.clean(payload.Code))
	name := s.clean(payload.Name)
	if code == "" || name == "" {
		return 0, ErrBlankText
	}

	subject := models.Subject{Code: code, Name: name, DepartmentID: payload.DepartmentID, YearLevel: payload.YearLevel}
	if err := s.repo.CreateSubject(ctx, &subject); err != nil {
		return 0, translateCatalogError(err)
	}

	s.created("subject", subject.ID, map[string]interface{}{"code": code}, actor)
	return subject.ID, nil
}

func (s *academicService) ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error) {
	rows, err := s.repo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubjectResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.SubjectResponse{
			ID:             row.ID,
			Code:           row.Code,
			Name:           row.Name,
			YearLevel:      row.YearLevel,
			DepartmentID:   row.DepartmentID,
			DepartmentName: row.DepartmentName,
		})
	}
	return responses, nil
}

func (s *academicService) DeleteSubject(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.repo.DeleteSubject(ctx, id); err != nil {
		return translateCatalogError(err)
	}
	s.deleted("subject", id, nil, actor)
	return nil
}

func (s *academicService) CreateFacultyLoad(ctx context.Context, payload dto.FacultyLoadCreateRequest, actor ActivityActor) (models.FacultyLoadKey, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.FacultyLoadKey{}, err
	}

	load := models.FacultyLoad{FacultyID: payload.FacultyID, SubjectID: payload.SubjectID, SectionID: payload.SectionID}
	if err := s.repo.CreateFacultyLoad(ctx, &load); err != nil {
		return models.FacultyLoadKey{}, translateCatalogError(err)
	}

	key := load.Key()
	s.created("faculty_load", load.FacultyID, map[string]interface{}{
		"subject_id": key.SubjectID,
		"section_id": key.SectionID,
	}, actor)
	return key, nil
}

func (s *academicService) ListFacultyLoads(ctx context.Context) ([]dto.FacultyLoadResponse, error) {
	rows, err := s.repo.ListFacultyLoads(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.FacultyLoadResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.FacultyLoadResponse{
			FacultyID:   row.FacultyID,
			FacultyName: row.FacultyName,
			SubjectID:   row.SubjectID,
			SubjectCode: row.SubjectCode,
			SubjectName: row.SubjectName,
			SectionID:   row.SectionID,
			SectionName: row.SectionName,
		})
	}
	return responses, nil
}

func (s *academicService) DeleteFacultyLoad(ctx context.Context, key models.FacultyLoadKey, actor ActivityActor) error {
	if err := s.repo.DeleteFacultyLoad(ctx, key); err != nil {
		return translateCatalogError(err)
	}
	s.deleted("faculty_load", key.FacultyID, map[string]interface{}{
		"subject_id": key.SubjectID,
		"section_id": key.SectionID,
	}, actor)
	return nil
}

func (s *academicService) CreateEnrollment(ctx context.Context, payload dto.EnrollmentCreateRequest, actor ActivityActor) (models.EnrollmentKey, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.EnrollmentKey{}, err
	}

	enrollment := models.Enrollment{StudentID: payload.StudentID, SubjectID: payload.SubjectID}
	if err := s.repo.CreateEnrollment(ctx, &enrollment); err != nil {
		return models.EnrollmentKey{}, translateCatalogError(err)
	}

	key := enrollment.Key()
	s.created("enrollment", key.StudentID, map[string]interface{}{"subject_id": key.SubjectID}, actor)
	return key, nil
}

func (s *academicService) ListEnrollments(ctx context.Context) ([]dto.EnrollmentResponse, error) {
	rows, err := s.repo.ListEnrollments(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EnrollmentResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.EnrollmentResponse{
			StudentID:   row.StudentID,
			StudentName: row.StudentName,
			SubjectID:   row.SubjectID,
			SubjectCode: row.SubjectCode,
			SubjectName: row.SubjectName,
		})
	}
	return responses, nil
}

func (s *academicService) DeleteEnrollment(ctx context.Context, key models.EnrollmentKey, actor ActivityActor) error {
	if err := s.repo.DeleteEnrollment(ctx, key); err != nil {
		return translateCatalogError(err)
	}
	s.deleted("enrollment", key.StudentID, map[string]interface{}{"subject_id": key.SubjectID}, actor)
	return nil
}

func (s *academicService) StudentSubjects(ctx context.Context, studentID uint) ([]dto.StudentSubjectResponse, error) {
	rows, err := s.repo.ListStudentSubjects(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentSubjectResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.StudentSubjectResponse{
			ID:         row.ID,
			Code:       row.Code,
			Name:       row.Name,
			FacultyID:  row.FacultyID,
			Instructor: row.Instructor,
			SectionID:  row.SectionID,
			Evaluated:  row.Evaluated,
		})
	}
	return responses, nil
}

func (s *academicService) clean(value string) string {
	return s.sanitizer.Clean(value)
}

func (s *academicService) created(entity string, id uint, metadata map[string]interface{}, actor ActivityActor) {
	enqueueActivity(s.activity, actor, ActionCatalogCreated, entity, id, metadata)
}

func (s *academicService) deleted(entity string, id uint, metadata map[string]interface{}, actor ActivityActor) {
	enqueueActivity(s.activity, actor, ActionCatalogDeleted, entity, id, metadata)
}

func translateCatalogError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateRecord):
		return ErrRecordExists
	case errors.Is(err, repository.ErrRecordInUse):
		return ErrRecordInUse
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	default:
		return err
	}
}

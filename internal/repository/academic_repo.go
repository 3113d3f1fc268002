package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/models"
)

var (
	// ErrDuplicateRecord reports a catalog entry violating a uniqueness constraint.
	ErrDuplicateRecord = errors.New("record already exists")
	// ErrRecordInUse reports a catalog entry still referenced by other records.
	ErrRecordInUse = errors.New("record is still referenced")
)

// SectionRow is a section joined with its department name.
type SectionRow struct {
	ID             uint
	Name           string
	YearLevel      *int
	DepartmentID   *uint
	DepartmentName *string
}

// FacultySectionRow is a section a faculty member teaches in, with the subject taught there.
type FacultySectionRow struct {
	ID          uint
	Name        string
	YearLevel   *int
	SubjectID   uint
	SubjectCode string
	SubjectName string
}

// SubjectRow is a subject joined with its department name.
type SubjectRow struct {
	ID             uint
	Code           string
	Name           string
	YearLevel      *int
	DepartmentID   *uint
	DepartmentName *string
}

// FacultyLoadRow is a faculty load with display names resolved.
type FacultyLoadRow struct {
	FacultyID   uint
	FacultyName *string
	SubjectID   uint
	SubjectCode *string
	SubjectName *string
	SectionID   uint
	SectionName *string
}

// EnrollmentRow is an enrollment with display names resolved.
type EnrollmentRow struct {
	StudentID   uint
	StudentName *string
	SubjectID   uint
	SubjectCode *string
	SubjectName *string
}

// StudentSubjectRow is a subject a student is enrolled in, with the instructor
// assigned to the student's section and whether it was already evaluated.
type StudentSubjectRow struct {
	ID         uint
	Code       string
	Name       string
	FacultyID  *uint
	Instructor *string
	SectionID  *uint
	Evaluated  bool
}

// AcademicRepository manages departments, sections, subjects, faculty loads and enrollments.
type AcademicRepository interface {
	CreateDepartment(ctx context.Context, department *models.Department) error
	ListDepartments(ctx context.Context) ([]models.Department, error)
	DeleteDepartment(ctx context.Context, id uint) error

	CreateSection(ctx context.Context, section *models.Section) error
	ListSections(ctx context.Context) ([]SectionRow, error)
	ListSectionsByYear(ctx context.Context, yearLevel int) ([]SectionRow, error)
	ListFacultySections(ctx context.Context, facultyID uint) ([]FacultySectionRow, error)
	DeleteSection(ctx context.Context, id uint) error

	CreateSubject(ctx context.Context, subject *models.Subject) error
	ListSubjects(ctx context.Context) ([]SubjectRow, error)
	DeleteSubject(ctx context.Context, id uint) error

	CreateFacultyLoad(ctx context.Context, load *models.FacultyLoad) error
	ListFacultyLoads(ctx context.Context) ([]FacultyLoadRow, error)
	DeleteFacultyLoad(ctx context.Context, key models.FacultyLoadKey) error

	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	ListEnrollments(ctx context.Context) ([]EnrollmentRow, error)
	DeleteEnrollment(ctx context.Context, key models.EnrollmentKey) error

	ListStudentSubjects(ctx context.Context, studentID uint) ([]StudentSubjectRow, error)
}

type academicRepository struct {
	db *gorm.DB
}

// NewAcademicRepository constructs the academic catalog repository.
func NewAcademicRepository(db *gorm.DB) AcademicRepository {
	return &academicRepository{db: db}
}

func (r *academicRepository) create(ctx context.Context, value interface{}) error {
	err := r.db.WithContext(ctx).Create(value).Error
	if IsDuplicateKey(err) {
		return ErrDuplicateRecord
	}
	return err
}

func (r *academicRepository) deleteWhere(ctx context.Context, model interface{}, query string, args ...interface{}) error {
	result := r.db.WithContext(ctx).Where(query, args...).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *academicRepository) referenced(ctx context.Context, checks map[interface{}]string, id uint) (bool, error) {
	for model, column := range checks {
		var count int64
		if err := r.db.WithContext(ctx).Model(model).Where(column+" = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *academicRepository) CreateDepartment(ctx context.Context, department *models.Department) error {
	return r.create(ctx, department)
}

func (r *academicRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *academicRepository) DeleteDepartment(ctx context.Context, id uint) error {
	inUse, err := r.referenced(ctx, map[interface{}]string{
		&models.User{}:    "department_id",
		&models.Section{}: "department_id",
		&models.Subject{}: "department_id",
	}, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrRecordInUse
	}
	return r.deleteWhere(ctx, &models.Department{}, "id = ?", id)
}

func (r *academicRepository) CreateSection(ctx context.Context, section *models.Section) error {
	return r.create(ctx, section)
}

func (r *academicRepository) ListSections(ctx context.Context) ([]SectionRow, error) {
	return r.listSections(ctx)
}

func (r *academicRepository) ListSectionsByYear(ctx context.Context, yearLevel int) ([]SectionRow, error) {
	return r.listSections(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("s.year_level = ?", yearLevel)
	})
}

func (r *academicRepository) listSections(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]SectionRow, error) {
	var rows []SectionRow
	err := r.db.WithContext(ctx).
		Table("sections s").
		Select("s.id, s.name, s.year_level, s.department_id, d.name AS department_name").
		Joins("LEFT JOIN departments d ON d.id = s.department_id").
		Scopes(scopes...).
		Order("s.name ASC").
		Order("s.id ASC").
		Scan(&rows).Error
	return rows, err
}

// ListFacultySections returns one row per faculty load of the faculty member.
func (r *academicRepository) ListFacultySections(ctx context.Context, facultyID uint) ([]FacultySectionRow, error) {
	var rows []FacultySectionRow
	err := r.db.WithContext(ctx).
		Table("faculty_subjects fl").
		Select("sec.id, sec.name, sec.year_level, sub.id AS subject_id, sub.code AS subject_code, sub.name AS subject_name").
		Joins("JOIN sections sec ON sec.id = fl.section_id").
		Joins("JOIN subjects sub ON sub.id = fl.subject_id").
		Where("fl.faculty_id = ?", facultyID).
		Order("sec.name ASC").
		Order("sub.code ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *academicRepository) DeleteSection(ctx context.Context, id uint) error {
	inUse, err := r.referenced(ctx, map[interface{}]string{
		&models.User{}:        "section_id",
		&models.FacultyLoad{}: "section_id",
	}, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrRecordInUse
	}
	return r.deleteWhere(ctx, &models.Section{}, "id = ?", id)
}

func (r *academicRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	return r.create(ctx, subject)
}

func (r *academicRepository) ListSubjects(ctx context.Context) ([]SubjectRow, error) {
	var rows []SubjectRow
	err := r.db.WithContext(ctx).
		Table("subjects s").
		Select("s.id, s.code, s.name, s.year_level, s.department_id, d.name AS department_name").
		Joins("LEFT JOIN departments d ON d.id = s.department_id").
		Order("s.code ASC").
		Scan(&rows).Error
	return rows, err
}

// DeleteSubject refuses while faculty loads or enrollments name the subject.
// Its evaluations are removed with it by the foreign key cascade.
func (r *academicRepository) DeleteSubject(ctx context.Context, id uint) error {
	inUse, err := r.referenced(ctx, map[interface{}]string{
		&models.FacultyLoad{}: "subject_id",
		&models.Enrollment{}:  "subject_id",
	}, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrRecordInUse
	}
	return r.deleteWhere(ctx, &models.Subject{}, "id = ?", id)
}

func (r *academicRepository) CreateFacultyLoad(ctx context.Context, load *models.FacultyLoad) error {
	return r.create(ctx, load)
}

func (r *academicRepository) ListFacultyLoads(ctx context.Context) ([]FacultyLoadRow, error) {
	var rows []FacultyLoadRow
	err := r.db.WithContext(ctx).
		Table("faculty_subjects fl").
		Select(`fl.faculty_id, f.name AS faculty_name, fl.subject_id, sub.code AS subject_code,
			sub.name AS subject_name, fl.section_id, sec.name AS section_name`).
		Joins("LEFT JOIN users f ON f.id = fl.faculty_id").
		Joins("LEFT JOIN subjects sub ON sub.id = fl.subject_id").
		Joins("LEFT JOIN sections sec ON sec.id = fl.section_id").
		Order("f.name ASC").
		Order("sub.code ASC").
		Order("fl.section_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *academicRepository) DeleteFacultyLoad(ctx context.Context, key models.FacultyLoadKey) error {
	return r.deleteWhere(ctx, &models.FacultyLoad{},
		"faculty_id = ? AND subject_id = ? AND section_id = ?", key.FacultyID, key.SubjectID, key.SectionID)
}

func (r *academicRepository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return r.create(ctx, enrollment)
}

func (r *academicRepository) ListEnrollments(ctx context.Context) ([]EnrollmentRow, error) {
	var rows []EnrollmentRow
	err := r.db.WithContext(ctx).
		Table("student_subjects ss").
		Select("ss.student_id, st.name AS student_name, ss.subject_id, sub.code AS subject_code, sub.name AS subject_name").
		Joins("LEFT JOIN users st ON st.id = ss.student_id").
		Joins("LEFT JOIN subjects sub ON sub.id = ss.subject_id").
		Order("st.name ASC").
		Order("sub.code ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *academicRepository) DeleteEnrollment(ctx context.Context, key models.EnrollmentKey) error {
	return r.deleteWhere(ctx, &models.Enrollment{}, "student_id = ? AND subject_id = ?", key.StudentID, key.SubjectID)
}

func (r *academicRepository) ListStudentSubjects(ctx context.Context, studentID uint) ([]StudentSubjectRow, error) {
	const query = `
		SELECT
			sub.id AS id,
			sub.code AS code,
			sub.name AS name,
			fl.faculty_id AS faculty_id,
			f.name AS instructor,
			fl.section_id AS section_id,
			CASE WHEN ev.id IS NULL THEN 0 ELSE 1 END AS evaluated
		FROM student_subjects ss
		JOIN users u ON u.id = ss.student_id
		JOIN subjects sub ON sub.id = ss.subject_id
		LEFT JOIN faculty_subjects fl ON fl.subject_id = sub.id AND fl.section_id = u.section_id
		LEFT JOIN users f ON f.id = fl.faculty_id
		LEFT JOIN evaluations ev ON ev.student_id = ss.student_id AND ev.subject_id = sub.id
		WHERE ss.student_id = ?
		ORDER BY sub.code ASC`

	var rows []StudentSubjectRow
	if err := r.db.WithContext(ctx).Raw(query, studentID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

package dto

// DepartmentCreateRequest creates a department.
type DepartmentCreateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// SectionCreateRequest creates a section.
type SectionCreateRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	DepartmentID *uint  `json:"department_id"`
	YearLevel    *int   `json:"year_level" validate:"omitempty,min=1,max=10"`
}

// SubjectCreateRequest creates a subject.
type SubjectCreateRequest struct {
	Code         string `json:"code" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=255"`
	DepartmentID *uint  `json:"department_id"`
	YearLevel    *int   `json:"year_level" validate:"omitempty,min=1,max=10"`
}

// FacultyLoadCreateRequest assigns a faculty member to a subject and section.
type FacultyLoadCreateRequest struct {
	FacultyID uint `json:"faculty_id" validate:"required"`
	SubjectID uint `json:"subject_id" validate:"required"`
	SectionID uint `json:"section_id" validate:"required"`
}

// EnrollmentCreateRequest enrolls a student in a subject.
type EnrollmentCreateRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
	SubjectID uint `json:"subject_id" validate:"required"`
}

// DepartmentResponse serializes a department.
type DepartmentResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SectionResponse serializes a section with its department name.
type SectionResponse struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	YearLevel      *int    `json:"year_level"`
	DepartmentID   *uint   `json:"department_id"`
	DepartmentName *string `json:"department_name"`
}

// FacultySectionResponse serializes a section a faculty member teaches in and the
// subject taught there.
type FacultySectionResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	YearLevel   *int   `json:"year_level"`
	SubjectID   uint   `json:"subject_id"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
}

// SubjectResponse serializes a subject with its department name.
type SubjectResponse struct {
	ID             uint    `json:"id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	YearLevel      *int    `json:"year_level"`
	DepartmentID   *uint   `json:"department_id"`
	DepartmentName *string `json:"department_name"`
}

// FacultyLoadResponse serializes a faculty load.
type FacultyLoadResponse struct {
	FacultyID   uint    `json:"faculty_id"`
	FacultyName *string `json:"faculty_name"`
	SubjectID   uint    `json:"subject_id"`
	SubjectCode *string `json:"subject_code"`
	SubjectName *string `json:"subject_name"`
	SectionID   uint    `json:"section_id"`
	SectionName *string `json:"section_name"`
}

// EnrollmentResponse serializes an enrollment.
type EnrollmentResponse struct {
	StudentID   uint    `json:"student_id"`
	StudentName *string `json:"student_name"`
	SubjectID   uint    `json:"subject_id"`
	SubjectCode *string `json:"subject_code"`
	SubjectName *string `json:"subject_name"`
}

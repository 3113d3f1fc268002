package models

import "time"

// Department is an academic department owning sections and subjects.
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Section is a class block within a department.
type Section struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	DepartmentID *uint     `gorm:"index" json:"department_id"`
	YearLevel    *int      `json:"year_level"`
	CreatedAt    time.Time `json:"created_at"`
}

// Subject is a course offering identified by its code.
type Subject struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	DepartmentID *uint     `gorm:"index" json:"department_id"`
	YearLevel    *int      `json:"year_level"`
	CreatedAt    time.Time `json:"created_at"`
}

// FacultyLoadKey identifies a faculty load: a faculty member teaching a subject to a section.
type FacultyLoadKey struct {
	FacultyID uint `json:"faculty_id"`
	SubjectID uint `json:"subject_id"`
	SectionID uint `json:"section_id"`
}

// FacultyLoad assigns a faculty member to a subject within a section.
type FacultyLoad struct {
	FacultyID uint      `gorm:"primaryKey;autoIncrement:false" json:"faculty_id"`
	SubjectID uint      `gorm:"primaryKey;autoIncrement:false" json:"subject_id"`
	SectionID uint      `gorm:"primaryKey;autoIncrement:false" json:"section_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the historical table name.
func (FacultyLoad) TableName() string {
	return "faculty_subjects"
}

// Key returns the composite identity of the load.
func (l FacultyLoad) Key() FacultyLoadKey {
	return FacultyLoadKey{FacultyID: l.FacultyID, SubjectID: l.SubjectID, SectionID: l.SectionID}
}

// EnrollmentKey identifies a student's enrollment in a subject.
type EnrollmentKey struct {
	StudentID uint `json:"student_id"`
	SubjectID uint `json:"subject_id"`
}

// Enrollment links a student to a subject they take.
type Enrollment struct {
	StudentID uint      `gorm:"primaryKey;autoIncrement:false" json:"student_id"`
	SubjectID uint      `gorm:"primaryKey;autoIncrement:false" json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the historical table name.
func (Enrollment) TableName() string {
	return "student_subjects"
}

// Key returns the composite identity of the enrollment.
func (e Enrollment) Key() EnrollmentKey {
	return EnrollmentKey{StudentID: e.StudentID, SubjectID: e.SubjectID}
}

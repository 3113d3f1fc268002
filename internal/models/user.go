package models

import "time"

// Roles recognised by the credential store.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// User is a student, faculty member or administrator. Identifiers are assigned by
// the school (student or employee numbers) rather than generated.
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Password     string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;not null;index" json:"role"`
	DepartmentID *uint     `gorm:"index" json:"department_id"`
	SectionID    *uint     `gorm:"index" json:"section_id"`
	Year         *int      `json:"year"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

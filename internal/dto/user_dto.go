package dto

// UserCreateRequest registers a student, faculty member or administrator.
type UserCreateRequest struct {
	ID           uint    `json:"id" validate:"required"`
	Name         string  `json:"name" validate:"required,max=255"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Password     string  `json:"password" validate:"required,max=72"`
	Role         string  `json:"role" validate:"required,oneof=student faculty admin"`
	DepartmentID *uint   `json:"department_id"`
	SectionID    *uint   `json:"section_id"`
	Year         *int    `json:"year" validate:"omitempty,min=1,max=10"`
}

// UserResponse is a user listed by role.
type UserResponse struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Year       *int    `json:"year"`
	Department *string `json:"department"`
}

// LoginRequest carries credentials; Username is the user identifier.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
	UserID  uint   `json:"user_id"`
	Token   string `json:"token"`
}

// StudentSubjectResponse is a subject on a student's dashboard.
type StudentSubjectResponse struct {
	ID         uint    `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	FacultyID  *uint   `json:"faculty_id"`
	Instructor *string `json:"instructor"`
	SectionID  *uint   `json:"section_id"`
	Evaluated  bool    `json:"evaluated"`
}

package models

import "time"

// EvaluationCategory groups evaluation questions under a heading such as "Communication".
type EvaluationCategory struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	Name         string               `gorm:"size:255;uniqueIndex;not null" json:"name"`
	DisplayOrder int                  `gorm:"not null;default:0" json:"display_order"`
	Questions    []EvaluationQuestion `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// EvaluationQuestion is a single rated statement shown to students.
type EvaluationQuestion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CategoryID   uint      `gorm:"not null;index" json:"category_id"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Evaluation is one student's submission for a subject taught by a faculty member.
// A student evaluates a subject at most once. Deleting the student, the faculty
// member or the subject deletes the evaluation and its answers.
type Evaluation struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	StudentID uint               `gorm:"not null;uniqueIndex:idx_evaluations_student_subject,priority:1" json:"student_id"`
	FacultyID uint               `gorm:"not null;index" json:"faculty_id"`
	SubjectID uint               `gorm:"not null;uniqueIndex:idx_evaluations_student_subject,priority:2" json:"subject_id"`
	SectionID *uint              `json:"section_id"`
	Comments  string             `gorm:"type:text" json:"comments"`
	Answers   []EvaluationAnswer `gorm:"foreignKey:EvaluationID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt time.Time          `gorm:"index" json:"created_at"`

	Student User    `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Faculty User    `gorm:"foreignKey:FacultyID;constraint:OnDelete:CASCADE" json:"-"`
	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// EvaluationAnswer stores the rating given to one question within an evaluation.
type EvaluationAnswer struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	EvaluationID uint               `gorm:"not null;uniqueIndex:idx_evaluation_answers_question,priority:1" json:"evaluation_id"`
	QuestionID   uint               `gorm:"not null;uniqueIndex:idx_evaluation_answers_question,priority:2" json:"question_id"`
	Rating       int                `gorm:"not null" json:"rating"`
	Question     EvaluationQuestion `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

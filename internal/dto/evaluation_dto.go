package dto

import "time"

// EvaluationSubmitRequest is the payload a student sends to rate a faculty member for a subject.
// Answers maps question identifiers to ratings.
type EvaluationSubmitRequest struct {
	StudentID *uint          `json:"student_id"`
	FacultyID *uint          `json:"faculty_id"`
	SubjectID *uint          `json:"subject_id"`
	SectionID *uint          `json:"section_id"`
	Answers   map[string]int `json:"answers"`
	Comments  *string        `json:"comments"`
}

// QuestionSummary aggregates the ratings one question received for a subject.
type QuestionSummary struct {
	QuestionID   uint   `json:"question_id"`
	QuestionText string `json:"question_text"`
	CategoryName string `json:"category_name"`
	Sum          int    `json:"sum"`
	Count        int    `json:"count"`
	Average      string `json:"average"`
}

// FacultySubjectSummary is the evaluation summary of one subject taught by a faculty member.
type FacultySubjectSummary struct {
	SubjectID        uint              `json:"subject_id"`
	SubjectName      string            `json:"subject_name"`
	SubjectCode      string            `json:"subject_code"`
	Comments         []string          `json:"comments"`
	OverallAverage   string            `json:"overall_average"`
	TotalEvaluations int               `json:"total_evaluations"`
	Questions        []QuestionSummary `json:"questions"`
}

// EvaluationReportItem is one evaluation in the administrator report. Rating is the
// mean of that evaluation's own answers.
type EvaluationReportItem struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"student_id"`
	FacultyID uint      `json:"faculty_id"`
	Course    string    `json:"course"`
	Feedback  string    `json:"feedback"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyEvaluationCount is the number of evaluations submitted on one day (YYYY-MM-DD).
type DailyEvaluationCount struct {
	EvaluationDate  string `json:"evaluation_date"`
	EvaluationCount int64  `json:"evaluation_count"`
}

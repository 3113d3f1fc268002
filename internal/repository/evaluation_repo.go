package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/evalink-api/internal/models"
)

// FacultyEvaluationRow is one answer of one evaluation joined with its question,
// category and subject.
type FacultyEvaluationRow struct {
	EvaluationID uint
	Comments     *string
	SubjectID    uint
	SubjectName  string
	SubjectCode  string
	QuestionID   uint
	QuestionText string
	CategoryName string
	Rating       int
}

// EvaluationReportRow is one evaluation with the mean of its own answers.
type EvaluationReportRow struct {
	ID        uint
	StudentID uint
	FacultyID uint
	Course    string
	Feedback  *string
	Rating    float64
	CreatedAt time.Time
}

// DailyCountRow is the number of evaluations submitted on a calendar day.
type DailyCountRow struct {
	EvaluationDate  string
	EvaluationCount int64
}

// EvaluationRepository persists evaluations and reads their aggregates.
type EvaluationRepository interface {
	CreateWithAnswers(ctx context.Context, evaluation *models.Evaluation, answers []models.EvaluationAnswer) error
	ListFacultyRows(ctx context.Context, facultyID uint) ([]FacultyEvaluationRow, error)
	ListReport(ctx context.Context) ([]EvaluationReportRow, error)
	CountDaily(ctx context.Context, since time.Time) ([]DailyCountRow, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository constructs the evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// CreateWithAnswers inserts the evaluation and all of its answers in one transaction.
// Either every row is committed or none is.
func (r *evaluationRepository) CreateWithAnswers(ctx context.Context, evaluation *models.Evaluation, answers []models.EvaluationAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(evaluation).Error; err != nil {
			switch {
			case IsDuplicateKey(err):
				return ErrDuplicateEvaluation
			case IsForeignKeyViolation(err):
				return ErrUnknownReference
			}
			return err
		}

		if len(answers) == 0 {
			return ErrEmptyAnswers
		}

		for i := range answers {
			answers[i].EvaluationID = evaluation.ID
		}

		if err := tx.Create(&answers).Error; err != nil {
			if IsForeignKeyViolation(err) {
				return ErrUnknownReference
			}
			return err
		}
		return nil
	})
}

func (r *evaluationRepository) ListFacultyRows(ctx context.Context, facultyID uint) ([]FacultyEvaluationRow, error) {
	const query = `
		SELECT
			e.id AS evaluation_id,
			e.comments AS comments,
			s.id AS subject_id,
			s.name AS subject_name,
			s.code AS subject_code,
			q.id AS question_id,
			q.text AS question_text,
			c.name AS category_name,
			a.rating AS rating
		FROM evaluations e
		JOIN evaluation_answers a ON a.evaluation_id = e.id
		JOIN evaluation_questions q ON q.id = a.question_id
		JOIN evaluation_categories c ON c.id = q.category_id
		JOIN subjects s ON s.id = e.subject_id
		WHERE e.faculty_id = ?
		ORDER BY s.name ASC, s.id ASC, c.display_order ASC, c.id ASC, q.display_order ASC, q.id ASC, e.id ASC`

	var rows []FacultyEvaluationRow
	if err := r.db.WithContext(ctx).Raw(query, facultyID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *evaluationRepository) ListReport(ctx context.Context) ([]EvaluationReportRow, error) {
	const query = `
		SELECT
			e.id AS id,
			e.student_id AS student_id,
			e.faculty_id AS faculty_id,
			s.name AS course,
			e.comments AS feedback,
			COALESCE(AVG(a.rating), 0) AS rating,
			e.created_at AS created_at
		FROM evaluations e
		JOIN subjects s ON s.id = e.subject_id
		LEFT JOIN evaluation_answers a ON a.evaluation_id = e.id
		GROUP BY e.id, e.student_id, e.faculty_id, s.name, e.comments, e.created_at
		ORDER BY e.created_at DESC, e.id DESC`

	var rows []EvaluationReportRow
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountDaily returns per-day submission counts for days on or after since. Days
// without submissions are not returned.
func (r *evaluationRepository) CountDaily(ctx context.Context, since time.Time) ([]DailyCountRow, error) {
	day := dailyBucket(r.db.Dialector.Name())
	var rows []DailyCountRow
	err := r.db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Select(day+" AS evaluation_date, COUNT(*) AS evaluation_count").
		Where("created_at >= ?", since).
		Group(day).
		Order("evaluation_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// dailyBucket is the SQL expression for the UTC calendar day of created_at. sqlite
// stores the UTC timestamps written by NowFunc; postgres converts timestamptz values
// in the session time zone unless told otherwise.
func dailyBucket(dialect string) string {
	if dialect == "postgres" {
		return "TO_CHAR(DATE(created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD')"
	}
	return "DATE(created_at)"
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evalink-api/internal/models"
)

func TestEvaluationRepositoryCreateWithAnswersCommitsAllRows(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)

	evaluation := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID, Comments: "Great class"}
	answers := []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 5},
		{QuestionID: fixture.questions[1].ID, Rating: 4},
	}

	require.NoError(t, repo.CreateWithAnswers(context.Background(), &evaluation, answers))
	require.NotZero(t, evaluation.ID)
	require.Equal(t, int64(1), countRows(t, db, &models.Evaluation{}))
	require.Equal(t, int64(2), countRows(t, db, &models.EvaluationAnswer{}))

	var stored []models.EvaluationAnswer
	require.NoError(t, db.Where("evaluation_id = ?", evaluation.ID).Find(&stored).Error)
	require.Len(t, stored, 2)
}

func TestEvaluationRepositoryRollsBackWhenAnAnswerViolatesConstraint(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)

	evaluation := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID}
	answers := []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 5},
		{QuestionID: fixture.questions[1].ID, Rating: 4},
		{QuestionID: fixture.questions[0].ID, Rating: 3},
	}

	err := repo.CreateWithAnswers(context.Background(), &evaluation, answers)
	require.Error(t, err)
	require.True(t, IsDuplicateKey(err))
	require.Equal(t, int64(0), countRows(t, db, &models.Evaluation{}))
	require.Equal(t, int64(0), countRows(t, db, &models.EvaluationAnswer{}))
}

func TestEvaluationRepositoryRejectsSecondEvaluationOfSubject(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	first := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &first, []models.EvaluationAnswer{{QuestionID: fixture.questions[0].ID, Rating: 5}}))

	second := models.Evaluation{StudentID: 9001, FacultyID: 78, SubjectID: fixture.subject.ID}
	err := repo.CreateWithAnswers(ctx, &second, []models.EvaluationAnswer{{QuestionID: fixture.questions[1].ID, Rating: 1}})
	require.ErrorIs(t, err, ErrDuplicateEvaluation)

	require.Equal(t, int64(1), countRows(t, db, &models.Evaluation{}))
	require.Equal(t, int64(1), countRows(t, db, &models.EvaluationAnswer{}))
}

func TestEvaluationRepositoryEmptyAnswersLeavesNoEvaluation(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)

	evaluation := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID}
	err := repo.CreateWithAnswers(context.Background(), &evaluation, nil)
	require.ErrorIs(t, err, ErrEmptyAnswers)
	require.Equal(t, int64(0), countRows(t, db, &models.Evaluation{}))
}

func TestEvaluationRepositoryListFacultyRowsOrdersBySubjectThenDisplayOrder(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	algebra := models.Subject{Code: "MATH1", Name: "Algebra"}
	require.NoError(t, db.Create(&algebra).Error)

	first := models.Evaluation{StudentID: 1, FacultyID: 77, SubjectID: fixture.subject.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &first, []models.EvaluationAnswer{
		{QuestionID: fixture.questions[1].ID, Rating: 4},
		{QuestionID: fixture.questions[0].ID, Rating: 5},
	}))
	second := models.Evaluation{StudentID: 1, FacultyID: 77, SubjectID: algebra.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &second, []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 2},
	}))
	other := models.Evaluation{StudentID: 2, FacultyID: 99, SubjectID: algebra.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &other, []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 1},
	}))

	rows, err := repo.ListFacultyRows(ctx, 77)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Algebra", rows[0].SubjectName)
	require.Equal(t, "Programming", rows[1].SubjectName)
	require.Equal(t, fixture.questions[0].ID, rows[1].QuestionID)
	require.Equal(t, fixture.questions[1].ID, rows[2].QuestionID)
	require.Equal(t, "Teaching", rows[2].CategoryName)

	empty, err := repo.ListFacultyRows(ctx, 12345)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestEvaluationRepositoryListReportAveragesEachEvaluation(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	older := models.Evaluation{StudentID: 1, FacultyID: 77, SubjectID: fixture.subject.ID, Comments: "ok", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, repo.CreateWithAnswers(ctx, &older, []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 5},
		{QuestionID: fixture.questions[1].ID, Rating: 4},
	}))

	orphan := models.Evaluation{StudentID: 2, FacultyID: 77, SubjectID: fixture.subject.ID, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Omit("Answers").Create(&orphan).Error)

	rows, err := repo.ListReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, orphan.ID, rows[0].ID, "expected newest evaluation first")
	require.Equal(t, float64(0), rows[0].Rating)
	require.Equal(t, older.ID, rows[1].ID)
	require.InDelta(t, 4.5, rows[1].Rating, 0.0001)
	require.Equal(t, "Programming", rows[1].Course)
	require.NotNil(t, rows[1].Feedback)
	require.Equal(t, "ok", *rows[1].Feedback)
}

func TestEvaluationRepositoryCountDailyOmitsEmptyDays(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	ctx := context.Background()

	today := time.Now().UTC()
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	twoDaysAgo := midnight.AddDate(0, 0, -2).Add(12 * time.Hour)
	tenDaysAgo := midnight.AddDate(0, 0, -10).Add(12 * time.Hour)

	for i, createdAt := range []time.Time{twoDaysAgo, twoDaysAgo.Add(time.Minute), tenDaysAgo} {
		evaluation := models.Evaluation{StudentID: uint(i + 1), FacultyID: 77, SubjectID: fixture.subject.ID, CreatedAt: createdAt}
		require.NoError(t, db.Omit("Answers").Create(&evaluation).Error)
	}

	since := midnight.AddDate(0, 0, -3)
	rows, err := NewEvaluationRepository(db).CountDaily(ctx, since)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, twoDaysAgo.Format("2006-01-02"), rows[0].EvaluationDate)
	require.Equal(t, int64(2), rows[0].EvaluationCount)
}

func TestDailyBucketUsesUTCDays(t *testing.T) {
	require.Equal(t, "TO_CHAR(DATE(created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD')", dailyBucket("postgres"))
	require.Equal(t, "DATE(created_at)", dailyBucket("sqlite"))
}

func TestEvaluationRepositoryRollsBackWhenAnAnswerNamesUnknownQuestion(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)

	evaluation := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID}
	answers := []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 5},
		{QuestionID: fixture.questions[1].ID, Rating: 4},
		{QuestionID: 424242, Rating: 3},
	}

	err := repo.CreateWithAnswers(context.Background(), &evaluation, answers)
	require.ErrorIs(t, err, ErrUnknownReference)
	require.Equal(t, int64(0), countRows(t, db, &models.Evaluation{}))
	require.Equal(t, int64(0), countRows(t, db, &models.EvaluationAnswer{}))
}

func TestEvaluationRepositoryRejectsUnknownParticipants(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)
	answers := func() []models.EvaluationAnswer {
		return []models.EvaluationAnswer{{QuestionID: fixture.questions[0].ID, Rating: 4}}
	}

	cases := []struct {
		name       string
		evaluation models.Evaluation
	}{
		{"student", models.Evaluation{StudentID: 5555, FacultyID: 77, SubjectID: fixture.subject.ID}},
		{"faculty", models.Evaluation{StudentID: 9001, FacultyID: 5555, SubjectID: fixture.subject.ID}},
		{"subject", models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: 5555}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evaluation := tc.evaluation
			err := repo.CreateWithAnswers(context.Background(), &evaluation, answers())
			require.ErrorIs(t, err, ErrUnknownReference)
			require.Equal(t, int64(0), countRows(t, db, &models.Evaluation{}))
			require.Equal(t, int64(0), countRows(t, db, &models.EvaluationAnswer{}))
		})
	}
}

func TestEvaluationRepositoryDeletingStudentRemovesEvaluations(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	first := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &first, []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 1},
		{QuestionID: fixture.questions[1].ID, Rating: 5},
	}))

	require.NoError(t, users.Delete(ctx, 9001))
	require.Equal(t, int64(0), countRows(t, db, &models.Evaluation{}))
	require.Equal(t, int64(0), countRows(t, db, &models.EvaluationAnswer{}))

	// A re-registered student with the same school id starts with no evaluations.
	seedUsers(t, db, models.RoleStudent, 9001)
	again := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &again, []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 3},
	}))
}

func TestEvaluationRepositoryDeletingFacultyRemovesEvaluations(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	kept := models.Evaluation{StudentID: 1, FacultyID: 78, SubjectID: fixture.subject.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &kept, []models.EvaluationAnswer{{QuestionID: fixture.questions[0].ID, Rating: 4}}))
	removed := models.Evaluation{StudentID: 2, FacultyID: 77, SubjectID: fixture.subject.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &removed, []models.EvaluationAnswer{{QuestionID: fixture.questions[0].ID, Rating: 2}}))

	require.NoError(t, NewUserRepository(db).Delete(ctx, 77))

	rows, err := repo.ListReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, kept.ID, rows[0].ID)
	require.Equal(t, int64(1), countRows(t, db, &models.EvaluationAnswer{}))
}

func TestEvaluationRepositoryDeletingSubjectRemovesEvaluations(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	evaluation := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &evaluation, []models.EvaluationAnswer{{QuestionID: fixture.questions[0].ID, Rating: 4}}))

	require.NoError(t, NewAcademicRepository(db).DeleteSubject(ctx, fixture.subject.ID))
	require.Equal(t, int64(0), countRows(t, db, &models.Evaluation{}))
	require.Equal(t, int64(0), countRows(t, db, &models.EvaluationAnswer{}))
}

func TestEvaluationRepositoryDeletingQuestionKeepsAveragesConsistent(t *testing.T) {
	db := newTestDB(t)
	fixture := seedCatalog(t, db)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	evaluation := models.Evaluation{StudentID: 9001, FacultyID: 77, SubjectID: fixture.subject.ID}
	require.NoError(t, repo.CreateWithAnswers(ctx, &evaluation, []models.EvaluationAnswer{
		{QuestionID: fixture.questions[0].ID, Rating: 1},
		{QuestionID: fixture.questions[1].ID, Rating: 5},
	}))

	require.NoError(t, NewQuestionRepository(db).DeleteQuestion(ctx, fixture.questions[0].ID))
	require.Equal(t, int64(1), countRows(t, db, &models.EvaluationAnswer{}))

	facultyRows, err := repo.ListFacultyRows(ctx, 77)
	require.NoError(t, err)
	require.Len(t, facultyRows, 1)
	require.Equal(t, 5, facultyRows[0].Rating)

	report, err := repo.ListReport(ctx)
	require.NoError(t, err)
	require.Len(t, report, 1)
	require.InDelta(t, 5.0, report[0].Rating, 0.0001)
}

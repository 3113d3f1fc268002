package repository

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/database"
	"github.com/noah-isme/evalink-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type catalogFixture struct {
	subject   models.Subject
	category  models.EvaluationCategory
	questions []models.EvaluationQuestion
}

// seedCatalog creates one subject with three questions, plus the students
// (1, 2, 3, 9001) and faculty members (77, 78, 99) the evaluation tests submit for.
func seedCatalog(t *testing.T, db *gorm.DB) catalogFixture {
	t.Helper()
	seedUsers(t, db, models.RoleStudent, 1, 2, 3, 9001)
	seedUsers(t, db, models.RoleFaculty, 77, 78, 99)

	subject := models.Subject{Code: "CS101", Name: "Programming"}
	require.NoError(t, db.Create(&subject).Error)

	category := models.EvaluationCategory{Name: "Teaching", DisplayOrder: 1}
	require.NoError(t, db.Create(&category).Error)

	questions := []models.EvaluationQuestion{
		{CategoryID: category.ID, Text: "Explains clearly", DisplayOrder: 1},
		{CategoryID: category.ID, Text: "Organized lessons", DisplayOrder: 2},
		{CategoryID: category.ID, Text: "Encourages participation", DisplayOrder: 3},
	}
	require.NoError(t, db.Create(&questions).Error)

	return catalogFixture{subject: subject, category: category, questions: questions}
}

func seedUsers(t *testing.T, db *gorm.DB, role string, ids ...uint) {
	t.Helper()
	for _, id := range ids {
		user := models.User{ID: id, Name: fmt.Sprintf("%s %d", role, id), Password: "x", Role: role}
		require.NoError(t, db.Create(&user).Error)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

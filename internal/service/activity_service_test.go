package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evalink-api/internal/dto"
	"github.com/noah-isme/evalink-api/internal/models"
	"github.com/noah-isme/evalink-api/internal/repository"
)

type memoryActivityRepo struct {
	entries   []models.ActivityLog
	lastQuery repository.ActivityLogQuery
}

func (m *memoryActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(_ context.Context, query repository.ActivityLogQuery) ([]models.ActivityLog, int64, error) {
	m.lastQuery = query
	end := len(m.entries)
	if query.Limit > 0 && query.Offset+query.Limit < end {
		end = query.Offset + query.Limit
	}
	if query.Offset >= len(m.entries) {
		return nil, int64(len(m.entries)), nil
	}
	return append([]models.ActivityLog(nil), m.entries[query.Offset:end]...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordMasksSecrets(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "Admin",
		Action:     "User.Created",
		EntityType: "user",
		EntityID:   ptrUint(5),
		Metadata: map[string]interface{}{
			"password":    "hunter2",
			"seed_secret": "abc",
			"role":        "student",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "***", entry.Metadata["password"])
	require.Equal(t, "***", entry.Metadata["seed_secret"])
	require.Equal(t, "student", entry.Metadata["role"])
	require.Equal(t, "admin", entry.ActorRole)
	require.Equal(t, "user.created", entry.Action)
}

func TestActivityServiceRecordDefaultsToSystemActor(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{Action: ActionQuestionsSeeded, EntityType: "evaluation_category"})
	require.NoError(t, err)
	require.Equal(t, "system", entry.ActorRole)
	require.NotNil(t, entry.Metadata)
}

func TestActivityServiceRecordRequiresActionAndEntity(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "user"})
	require.ErrorIs(t, err, errIncompleteActivity)

	_, err = svc.Record(context.Background(), ActivityEntry{Action: "user.created", EntityType: "  "})
	require.ErrorIs(t, err, errIncompleteActivity)
	require.Empty(t, repo.entries)
}

func TestActivityServiceListPages(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())
	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), ActivityEntry{ActorID: 1, Action: ActionCatalogCreated, EntityType: "subject"})
		require.NoError(t, err)
	}

	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.List(context.Background(), dto.ActivityListRequest{Page: 2, PageSize: 2, ActorID: 1, Action: " catalog ", Since: &since})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, int64(3), result.Pagination.TotalItems)
	require.Equal(t, 2, result.Pagination.TotalPages)
	require.Equal(t, 2, result.Pagination.Page)

	require.Equal(t, 2, repo.lastQuery.Offset)
	require.Equal(t, 2, repo.lastQuery.Limit)
	require.Equal(t, "catalog", repo.lastQuery.Action)
	require.Equal(t, uint(1), *repo.lastQuery.ActorID)
	require.Equal(t, &since, repo.lastQuery.Since)
}

func TestPageCount(t *testing.T) {
	require.Equal(t, 1, pageCount(0, 25))
	require.Equal(t, 1, pageCount(10, 0))
	require.Equal(t, 1, pageCount(25, 25))
	require.Equal(t, 2, pageCount(26, 25))
}

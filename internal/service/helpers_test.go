package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/database"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrString(v string) *string {
	return &v
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type recordingEnqueuer struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (r *recordingEnqueuer) Enqueue(entry ActivityEntry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return true
}

func (r *recordingEnqueuer) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}


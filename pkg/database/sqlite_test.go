package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planpilot/pkg/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	return logger.CreateTestLogger(filepath.Join(t.TempDir(), "test.log"), "info")
}

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "planpilot_test.db")
	db, err := NewSQLiteDB(dbPath, newTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndGetActivity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.CreateActivity(ctx, &CreateActivityRequest{
		UserID:      "user-1",
		Title:       "Weekend in Portland",
		Description: "Two day trip",
		Category:    "travel",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, ActivityStatusActive, created.Status)

	got, err := db.GetActivity(ctx, created.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Weekend in Portland", got.Title)
	assert.Equal(t, "travel", got.Category)

	// Another user must not see it.
	_, err = db.GetActivity(ctx, created.ID, "user-2")
	assert.Error(t, err)
}

func TestCreateActivityValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.CreateActivity(ctx, &CreateActivityRequest{Title: "no user"})
	assert.Error(t, err)

	_, err = db.CreateActivity(ctx, &CreateActivityRequest{UserID: "user-1"})
	assert.Error(t, err)
}

func TestLinkTasksPreservesOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	activity, err := db.CreateActivity(ctx, &CreateActivityRequest{
		UserID: "user-1",
		Title:  "5K training",
	})
	require.NoError(t, err)

	titles := []string{"Buy running shoes", "Run 1km", "Run 3km", "Race day"}
	for i, title := range titles {
		task, err := db.CreateTask(ctx, &CreateTaskRequest{UserID: "user-1", Title: title})
		require.NoError(t, err)
		assert.Equal(t, TaskStatusPending, task.Status)
		require.NoError(t, db.LinkTaskToActivity(ctx, activity.ID, task.ID, i))
	}

	tasks, err := db.GetActivityTasks(ctx, activity.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, tasks, len(titles))
	for i, task := range tasks {
		assert.Equal(t, titles[i], task.Title)
	}
}

func TestLinkDuplicateTaskFails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	activity, err := db.CreateActivity(ctx, &CreateActivityRequest{UserID: "u", Title: "a"})
	require.NoError(t, err)
	task, err := db.CreateTask(ctx, &CreateTaskRequest{UserID: "u", Title: "t"})
	require.NoError(t, err)

	require.NoError(t, db.LinkTaskToActivity(ctx, activity.ID, task.ID, 0))
	assert.Error(t, db.LinkTaskToActivity(ctx, activity.ID, task.ID, 1))
}

func TestSessionUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := &SessionRecord{ID: "sess-1", UserID: "user-1", Payload: `{"phase":"gathering"}`}
	require.NoError(t, db.SaveSession(ctx, rec))

	rec.Payload = `{"phase":"confirming"}`
	require.NoError(t, db.SaveSession(ctx, rec))

	got, err := db.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, `{"phase":"confirming"}`, got.Payload)

	_, err = db.GetSession(ctx, "missing")
	assert.Error(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	log := newTestLogger(t)

	db, err := NewSQLiteDB(dbPath, log)
	require.NoError(t, err)

	_, err = db.CreateActivity(context.Background(), &CreateActivityRequest{UserID: "u", Title: "keep"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not re-run applied migrations or lose data.
	db2, err := NewSQLiteDB(dbPath, log)
	require.NoError(t, err)
	defer db2.Close()
	require.NoError(t, db2.Ping(context.Background()))
}

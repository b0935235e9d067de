package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"planpilot/internal/utils"
)

// SQLiteDB implements Storage on top of a local SQLite file.
type SQLiteDB struct {
	db     *sql.DB
	logger utils.ExtendedLogger

	// Serializes link writes so one plan's task ordering is committed as a
	// unit even though callers link tasks one at a time.
	linkMu sync.Mutex
}

// NewSQLiteDB opens (and migrates) the database at the given path.
func NewSQLiteDB(dbPath string, logger utils.ExtendedLogger) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; more connections just contend.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteDB{db: db, logger: logger}

	runner := NewMigrationRunner(db, logger)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Infof("✅ SQLite database ready at %s", dbPath)
	return s, nil
}

// CreateActivity inserts a new activity and returns the stored row.
func (s *SQLiteDB) CreateActivity(ctx context.Context, req *CreateActivityRequest) (*Activity, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	now := time.Now().UTC()
	activity := &Activity{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      ActivityStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, title, description, category, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID, activity.UserID, activity.Title, activity.Description,
		activity.Category, activity.Status, activity.CreatedAt, activity.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.Infof("Created activity %s for user %s", activity.ID, activity.UserID)
	return activity, nil
}

// GetActivity returns an activity owned by the given user.
func (s *SQLiteDB) GetActivity(ctx context.Context, activityID, userID string) (*Activity, error) {
	var a Activity
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, category, status, created_at, updated_at
		FROM activities WHERE id = ? AND user_id = ?`,
		activityID, userID,
	).Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Category, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("activity not found: %s", activityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &a, nil
}

// CreateTask inserts a new task and returns the stored row.
func (s *SQLiteDB) CreateTask(ctx context.Context, req *CreateTaskRequest) (*Task, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	task := &Task{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      TaskStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.Title, task.Description, task.Status, task.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// LinkTaskToActivity records the ordered membership of a task in an activity.
func (s *SQLiteDB) LinkTaskToActivity(ctx context.Context, activityID, taskID string, position int) error {
	s.linkMu.Lock()
	defer s.linkMu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_tasks (activity_id, task_id, position)
		VALUES (?, ?, ?)`,
		activityID, taskID, position,
	)
	if err != nil {
		return fmt.Errorf("failed to link task %s to activity %s: %w", taskID, activityID, err)
	}
	return nil
}

// GetActivityTasks returns the tasks linked to an activity in link order.
func (s *SQLiteDB) GetActivityTasks(ctx context.Context, activityID, userID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.title, t.description, t.status, t.created_at
		FROM tasks t
		JOIN activity_tasks at ON at.task_id = t.id
		WHERE at.activity_id = ? AND t.user_id = ?
		ORDER BY at.position ASC`,
		activityID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// SaveSession upserts a serialized session snapshot.
func (s *SQLiteDB) SaveSession(ctx context.Context, rec *SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("session id is required")
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		rec.ID, rec.UserID, rec.Payload, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession loads a serialized session snapshot.
func (s *SQLiteDB) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	var rec SessionRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, payload, created_at, updated_at
		FROM sessions WHERE id = ?`,
		sessionID,
	).Scan(&rec.ID, &rec.UserID, &rec.Payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &rec, nil
}

// Ping verifies database connectivity.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

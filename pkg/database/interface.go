package database

import (
	"context"
)

// Storage is the persistence contract the orchestrator commits confirmed
// plans through. Task creation and task-to-activity linking for one plan are
// effectively transactional per session: the implementation must not let
// another session's writes interleave in a way that attributes a task to the
// wrong activity.
type Storage interface {
	// Activity management
	CreateActivity(ctx context.Context, req *CreateActivityRequest) (*Activity, error)
	GetActivity(ctx context.Context, activityID, userID string) (*Activity, error)

	// Task management
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*Task, error)
	LinkTaskToActivity(ctx context.Context, activityID, taskID string, position int) error
	GetActivityTasks(ctx context.Context, activityID, userID string) ([]Task, error)

	// Session snapshots (host-driven; the orchestrator never calls these)
	SaveSession(ctx context.Context, rec *SessionRecord) error
	GetSession(ctx context.Context, sessionID string) (*SessionRecord, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

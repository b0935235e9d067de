package database

import (
	"time"
)

// Activity status constants
const (
	ActivityStatusActive    = "active"
	ActivityStatusCompleted = "completed"
)

// Task status constants
const (
	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
)

// Activity is a confirmed plan persisted as a single activity row with an
// ordered set of linked tasks.
type Activity struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Task is one actionable item of a confirmed plan.
type Task struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SessionRecord is a JSON-serialized conversation session, stored so a host
// can resume a conversation later. The orchestrator itself never touches
// these; the caller owns session lifetime.
type SessionRecord struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Payload   string    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateActivityRequest carries the fields for a new activity.
type CreateActivityRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CreateTaskRequest carries the fields for a new task.
type CreateTaskRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

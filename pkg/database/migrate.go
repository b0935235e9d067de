package database

import (
	"database/sql"
	"fmt"
	"sort"

	"planpilot/internal/utils"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered, in-code schema history. New schema changes get a
// new entry with the next version; applied versions are never edited.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_activities",
		SQL: `
			CREATE TABLE IF NOT EXISTS activities (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'active',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id);
		`,
	},
	{
		Version: 2,
		Name:    "create_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS tasks (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'pending',
				created_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
		`,
	},
	{
		Version: 3,
		Name:    "create_activity_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS activity_tasks (
				activity_id TEXT NOT NULL REFERENCES activities(id),
				task_id TEXT NOT NULL REFERENCES tasks(id),
				position INTEGER NOT NULL,
				PRIMARY KEY (activity_id, task_id)
			);
			CREATE INDEX IF NOT EXISTS idx_activity_tasks_activity ON activity_tasks(activity_id, position);
		`,
	},
	{
		Version: 4,
		Name:    "create_sessions",
		SQL: `
			CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				payload TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
		`,
	},
}

// MigrationRunner handles database migrations
type MigrationRunner struct {
	db     *sql.DB
	logger utils.ExtendedLogger
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *sql.DB, logger utils.ExtendedLogger) *MigrationRunner {
	return &MigrationRunner{db: db, logger: logger}
}

// Run applies all pending migrations
func (mr *MigrationRunner) Run() error {
	if err := mr.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := mr.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if !appliedContains(applied, m.Version) {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	if len(pending) > 0 {
		mr.logger.Infof("🔄 Applying %d pending migrations (%d already applied)", len(pending), len(applied))
	}

	for _, migration := range pending {
		if err := mr.runMigration(migration); err != nil {
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

// createMigrationsTable creates the migrations tracking table
func (mr *MigrationRunner) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := mr.db.Exec(query)
	return err
}

// getAppliedMigrations returns the list of applied migration versions
func (mr *MigrationRunner) getAppliedMigrations() ([]int, error) {
	rows, err := mr.db.Query(`SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

func appliedContains(applied []int, version int) bool {
	for _, v := range applied {
		if v == version {
			return true
		}
	}
	return false
}

// runMigration runs a single migration inside a transaction
func (mr *MigrationRunner) runMigration(migration Migration) error {
	tx, err := mr.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, migration.Version); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	mr.logger.Infof("✅ Applied migration %d: %s", migration.Version, migration.Name)
	return nil
}

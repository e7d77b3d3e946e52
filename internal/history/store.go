// Package history records completed refresh sessions in a local SQLite
// database. Only session telemetry is stored; fetched project data is
// never persisted.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Session is one recorded refresh run.
type Session struct {
	ID             string    `db:"id"`
	StartedAt      time.Time `db:"started_at"`
	EndedAt        time.Time `db:"ended_at"`
	Projects       int       `db:"projects"`
	TotalTasks     int       `db:"total_tasks"`
	CompletedTasks int       `db:"completed_tasks"`
	Error          string    `db:"error"`
}

// Duration returns the session's wall-clock length.
func (s Session) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Failed reports whether the session ended with a pipeline-level error.
func (s Session) Failed() bool {
	return s.Error != ""
}

// Store persists refresh sessions in SQLite.
type Store struct {
	db *sqlx.DB
}

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	started_at      DATETIME NOT NULL,
	ended_at        DATETIME NOT NULL,
	projects        INTEGER NOT NULL DEFAULT 0,
	total_tasks     INTEGER NOT NULL DEFAULT 0,
	completed_tasks INTEGER NOT NULL DEFAULT 0,
	error           TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at
	ON sessions(started_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}

// Open opens (or creates) the history database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory %s: %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Record inserts one completed or failed session.
func (s *Store) Record(ctx context.Context, session Session) error {
	const query = `
		INSERT INTO sessions (
			id, started_at, ended_at,
			projects, total_tasks, completed_tasks, error
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(
		ctx, query,
		session.ID, session.StartedAt, session.EndedAt,
		session.Projects, session.TotalTasks, session.CompletedTasks,
		session.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", session.ID, err)
	}
	return nil
}

// Recent returns the most recent sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}

	var sessions []Session
	err := s.db.SelectContext(
		ctx, &sessions,
		`SELECT id, started_at, ended_at,
			projects, total_tasks, completed_tasks, error
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	return sessions, nil
}

// Last returns the most recent session, or nil when none exist.
func (s *Store) Last(ctx context.Context) (*Session, error) {
	sessions, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

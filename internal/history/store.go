// Package history persists a record of every cci execution the server
// performs, backed by SQLite. It exists for operator forensics — which
// task ran against which org, when, and how it ended.
//
// History is an optional subsystem: if the database cannot be opened
// the server runs without it and only the history tool is missing.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sfcore/th-dev/internal/cci"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// maxStderrExcerpt caps how much stderr is kept per run. Full output
// belongs to the caller's turn, not the archive.
const maxStderrExcerpt = 2000

// Run is one recorded execution.
type Run struct {
	ID         int64
	TaskName   string
	Org        string
	ExitCode   int
	Succeeded  bool
	DurationMs int64
	Stderr     string
	CreatedAt  time.Time
}

// Store is a SQLite-backed run archive. Safe for concurrent use; the
// underlying *sql.DB serializes access.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	task_name   TEXT NOT NULL,
	org         TEXT NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	stderr      TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_task ON runs(task_name);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Open creates or opens the history database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun implements cci.Recorder. Recording is best-effort: a write
// failure is logged, never propagated — history must not fail a run
// that already happened.
func (s *Store) RecordRun(ctx context.Context, taskName, org string, res cci.ExecutionResult) {
	stderr := res.Stderr
	if len(stderr) > maxStderrExcerpt {
		stderr = stderr[:maxStderrExcerpt]
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (task_name, org, exit_code, succeeded, duration_ms, stderr, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		taskName, org, res.ExitCode, boolToInt(res.Succeeded),
		res.Duration.Milliseconds(), stderr, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		log.Printf("WARNING: history record: %v", err)
	}
}

// Recent returns the newest runs, newest first, optionally filtered by
// task name. limit <= 0 defaults to 20.
func (s *Store) Recent(ctx context.Context, taskName string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, task_name, org, exit_code, succeeded, duration_ms, stderr, created_at
		FROM runs`
	args := []any{}
	if taskName != "" {
		query += ` WHERE task_name = ?`
		args = append(args, taskName)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var succeeded int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.TaskName, &r.Org, &r.ExitCode, &succeeded,
			&r.DurationMs, &r.Stderr, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Succeeded = succeeded != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

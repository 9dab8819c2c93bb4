package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/outline/pkg/outline/internalerr"
	"github.com/cognicore/outline/pkg/outline/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDGenerator
}

// OpenSQLite opens a SQLite database with WAL mode enabled
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One connection: concurrent writers queue instead of hitting SQLITE_BUSY
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:  db,
		ids: store.NewIDGenerator(),
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	root TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT '',
	files INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS file_results (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	path TEXT NOT NULL,
	output TEXT NOT NULL DEFAULT '',
	success INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	errors_json TEXT NOT NULL DEFAULT '[]',
	warnings_json TEXT NOT NULL DEFAULT '[]',
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_file_results_run ON file_results(run_id, seq);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateRun starts a new run
func (s *sqliteStore) CreateRun(ctx context.Context, kind, root string) (store.Run, error) {
	now := time.Now().UTC()
	run := store.Run{
		ID:        s.ids.New(now),
		Kind:      kind,
		Root:      root,
		StartedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, kind, root, started_at)
VALUES (?, ?, ?, ?);
`, run.ID, run.Kind, run.Root, formatTime(run.StartedAt))
	if err != nil {
		return store.Run{}, err
	}
	return run, nil
}

// FinishRun stamps the run as finished and returns its final state
func (s *sqliteStore) FinishRun(ctx context.Context, id string) (store.Run, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET finished_at = ? WHERE id = ?`,
		formatTime(time.Now().UTC()), id)
	if err != nil {
		return store.Run{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return store.Run{}, err
	} else if n == 0 {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return s.GetRun(ctx, id)
}

// GetRun returns a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, kind, root, started_at, finished_at, files, failed
FROM runs
WHERE id = ?;
`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return run, err
}

// ListRuns returns runs newest first. A non-positive limit returns all.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, root, started_at, finished_at, files, failed
FROM runs
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecordResult stores a file result and bumps the run counters
func (s *sqliteStore) RecordResult(ctx context.Context, runID string, r store.FileResult) error {
	errorsJSON, err := json.Marshal(nonNil(r.Errors))
	if err != nil {
		return err
	}
	warningsJSON, err := json.Marshal(nonNil(r.Warnings))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	failed := 0
	if !r.Success {
		failed = 1
	}
	res, err := tx.ExecContext(ctx, `
UPDATE runs SET files = files + 1, failed = failed + ?
WHERE id = ?;
`, failed, runID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO file_results (run_id, path, output, success, error, errors_json, warnings_json)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, runID, r.Path, r.Output, r.Success, r.Error, string(errorsJSON), string(warningsJSON))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Results returns the file results of a run in recording order
func (s *sqliteStore) Results(ctx context.Context, runID string) ([]store.FileResult, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT path, output, success, error, errors_json, warnings_json
FROM file_results
WHERE run_id = ?
ORDER BY seq;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []store.FileResult{}
	for rows.Next() {
		var r store.FileResult
		var errorsJSON, warningsJSON string
		if err := rows.Scan(&r.Path, &r.Output, &r.Success, &r.Error, &errorsJSON, &warningsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(errorsJSON), &r.Errors); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(warningsJSON), &r.Warnings); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var run store.Run
	var started, finished string
	if err := sc.Scan(&run.ID, &run.Kind, &run.Root, &started, &finished, &run.Files, &run.Failed); err != nil {
		return store.Run{}, err
	}

	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return store.Run{}, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return store.Run{}, err
	}
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

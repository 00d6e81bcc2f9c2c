// Package runlog persists per-post upload outcomes in SQLite so a batch
// leaves a machine-readable trail instead of log lines only. The
// spreadsheet itself is never written back; operators and follow-up
// tooling reconcile against this ledger.
//
// The caller must blank-import a database/sql driver named "sqlite":
//
//	import _ "modernc.org/sqlite"
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Status of one post's upload.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result is one post's outcome within a run.
type Result struct {
	RunID        string
	Row          int // spreadsheet row reference
	Title        string
	Status       Status
	Reason       string // populated when Status is failed
	BlocksTotal  int
	BlocksFailed int
	RecordedAt   time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS upload_results (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT NOT NULL,
	row_ref        INTEGER NOT NULL,
	title          TEXT NOT NULL,
	status         TEXT NOT NULL,
	reason         TEXT NOT NULL DEFAULT '',
	blocks_total   INTEGER NOT NULL DEFAULT 0,
	blocks_failed  INTEGER NOT NULL DEFAULT 0,
	recorded_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_upload_results_run ON upload_results(run_id);
`

// Ledger records upload results.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at path with WAL pragmas
// and the schema applied. Parent directories are created as needed.
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("runlog: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("runlog: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: apply schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error { return l.db.Close() }

// Record writes one result. RecordedAt defaults to now.
func (l *Ledger) Record(ctx context.Context, r Result) error {
	at := r.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO upload_results (
			run_id, row_ref, title, status, reason,
			blocks_total, blocks_failed, recorded_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		r.RunID, r.Row, r.Title, string(r.Status), r.Reason,
		r.BlocksTotal, r.BlocksFailed, at.Unix())
	if err != nil {
		return fmt.Errorf("runlog: record: %w", err)
	}
	return nil
}

// Results returns every result of a run, in row order.
func (l *Ledger) Results(ctx context.Context, runID string) ([]Result, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, row_ref, title, status, reason,
		       blocks_total, blocks_failed, recorded_at
		FROM upload_results WHERE run_id = ? ORDER BY row_ref`, runID)
	if err != nil {
		return nil, fmt.Errorf("runlog: query: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		var status string
		var at int64
		if err := rows.Scan(&r.RunID, &r.Row, &r.Title, &status, &r.Reason,
			&r.BlocksTotal, &r.BlocksFailed, &at); err != nil {
			return nil, fmt.Errorf("runlog: scan: %w", err)
		}
		r.Status = Status(status)
		r.RecordedAt = time.Unix(at, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// FailedCount returns the number of failed posts in a run.
func (l *Ledger) FailedCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM upload_results
		WHERE run_id = ? AND status = ?`, runID, string(StatusFailed)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("runlog: count: %w", err)
	}
	return n, nil
}

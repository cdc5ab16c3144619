package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/labdocs/internal/apperr"
)

// RunRow represents a row in the runs table.
type RunRow struct {
	ID          int64
	StartedAt   time.Time
	LogPath     string
	Records     int
	Skipped     int
	Fallbacks   int
	Directories int
	Failures    int
}

// DocRow represents the outcome for one directory within a run. Error is
// empty when the documentation file was written.
type DocRow struct {
	RunID     int64
	Directory string
	DocPath   string
	Commands  int
	Created   bool
	Checksum  string
	Error     string
}

// RecordRun inserts a run and its per-directory rows within a transaction and
// returns the new run ID.
func (db *DB) RecordRun(ctx context.Context, run RunRow, docs []DocRow) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, log_path, records, skipped, fallbacks, directories, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt.UTC(), run.LogPath, run.Records, run.Skipped, run.Fallbacks, run.Directories, run.Failures)
	if err != nil {
		return 0, fmt.Errorf("ledger: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ledger: run id: %w", err)
	}

	if len(docs) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO docs (run_id, directory, doc_path, commands, created, checksum, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return 0, fmt.Errorf("ledger: prepare doc insert: %w", err)
		}
		defer stmt.Close()
		for _, d := range docs {
			if _, err := stmt.ExecContext(ctx, id, d.Directory, d.DocPath, d.Commands, d.Created, d.Checksum, d.Error); err != nil {
				return 0, fmt.Errorf("ledger: insert doc %s: %w", d.Directory, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ledger: commit: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recent run, or apperr.ErrNotFound when the
// ledger is empty.
func (db *DB) LatestRun(ctx context.Context) (*RunRow, error) {
	var r RunRow
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, started_at, log_path, records, skipped, fallbacks, directories, failures
		FROM runs ORDER BY id DESC LIMIT 1
	`).Scan(&r.ID, &r.StartedAt, &r.LogPath, &r.Records, &r.Skipped, &r.Fallbacks, &r.Directories, &r.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: latest run: %w", err)
	}
	return &r, nil
}

// RunDocs returns the per-directory rows of a run in the order they were
// recorded.
func (db *DB) RunDocs(ctx context.Context, runID int64) ([]DocRow, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, directory, doc_path, commands, created, checksum, error
		FROM docs WHERE run_id = ? ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("ledger: run docs: %w", err)
	}
	defer rows.Close()

	var out []DocRow
	for rows.Next() {
		var d DocRow
		if err := rows.Scan(&d.RunID, &d.Directory, &d.DocPath, &d.Commands, &d.Created, &d.Checksum, &d.Error); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RunCount returns the number of recorded runs.
func (db *DB) RunCount(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger: run count: %w", err)
	}
	return n, nil
}

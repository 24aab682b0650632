package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ScanStore = (*ScanRepo)(nil)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ScanRepo is the SQLite implementation of the ScanStore port interface.
type ScanRepo struct {
	db *DB
}

// NewScanRepo creates a new ScanRepo backed by the given DB.
func NewScanRepo(db *DB) *ScanRepo {
	return &ScanRepo{db: db}
}

// SaveRun inserts a run and its snapshot documents in a single transaction.
func (r *ScanRepo) SaveRun(ctx context.Context, run model.ScanRun, docs []model.SnapshotDocument) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	const runQuery = `
		INSERT INTO scan_runs (id, root_repo, started_at, finished_at, repos_scanned, creatures_found)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, runQuery,
		run.ID, run.RootRepo, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.ReposScanned, run.CreaturesFound,
	); err != nil {
		return fmt.Errorf("insert scan run %s: %w", run.ID, err)
	}

	const snapshotQuery = `INSERT INTO snapshots (run_id, kind, body) VALUES (?, ?, ?)`
	for _, doc := range docs {
		if _, err := tx.ExecContext(ctx, snapshotQuery, run.ID, string(doc.Kind), doc.Body); err != nil {
			return fmt.Errorf("insert %s snapshot for run %s: %w", doc.Kind, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scan run %s: %w", run.ID, err)
	}

	return nil
}

// LatestRun returns the most recently finished run. Returns nil, nil if no run
// has been recorded.
func (r *ScanRepo) LatestRun(ctx context.Context) (*model.ScanRun, error) {
	const query = `
		SELECT id, root_repo, started_at, finished_at, repos_scanned, creatures_found
		FROM scan_runs
		ORDER BY finished_at DESC, rowid DESC
		LIMIT 1
	`

	run, err := scanRun(r.db.Reader.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest scan run: %w", err)
	}

	return run, nil
}

// ListRuns returns up to limit runs, newest first.
func (r *ScanRepo) ListRuns(ctx context.Context, limit int) ([]model.ScanRun, error) {
	const query = `
		SELECT id, root_repo, started_at, finished_at, repos_scanned, creatures_found
		FROM scan_runs
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list scan runs: %w", err)
	}
	defer rows.Close()

	runs := []model.ScanRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan runs: %w", err)
	}

	return runs, nil
}

// GetSnapshot returns the stored body of one snapshot kind for a run.
func (r *ScanRepo) GetSnapshot(ctx context.Context, runID string, kind model.SnapshotKind) ([]byte, error) {
	const query = `SELECT body FROM snapshots WHERE run_id = ? AND kind = ?`

	var body []byte
	err := r.db.Reader.QueryRowContext(ctx, query, runID, string(kind)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s snapshot for run %s: %w", kind, runID, driven.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s snapshot for run %s: %w", kind, runID, err)
	}

	return body, nil
}

// PruneRuns deletes every run except the newest keep. Snapshots of deleted
// runs are removed by the foreign key cascade.
func (r *ScanRepo) PruneRuns(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	const query = `
		DELETE FROM scan_runs
		WHERE id NOT IN (
			SELECT id FROM scan_runs
			ORDER BY finished_at DESC, rowid DESC
			LIMIT ?
		)
	`

	result, err := r.db.Writer.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("prune scan runs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}

	return int(rows), nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.ScanRun, error) {
	var run model.ScanRun
	var startedAt, finishedAt string

	err := s.Scan(&run.ID, &run.RootRepo, &startedAt, &finishedAt, &run.ReposScanned, &run.CreaturesFound)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.FinishedAt, err = parseTime(finishedAt)
	if err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}

	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}

package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// ErrSnapshotNotFound indicates no snapshot of the requested kind exists for
// the requested run.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ScanStore defines the driven port for scan run history. It is write-only
// from the pipeline's point of view: builders never read previous runs.
type ScanStore interface {
	// SaveRun records a finished run together with its snapshot documents.
	SaveRun(ctx context.Context, run model.ScanRun, docs []model.SnapshotDocument) error
	// LatestRun returns the most recently finished run, or nil, nil if none exist.
	LatestRun(ctx context.Context) (*model.ScanRun, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]model.ScanRun, error)
	// GetSnapshot returns the encoded snapshot of the given kind for a run.
	GetSnapshot(ctx context.Context, runID string, kind model.SnapshotKind) ([]byte, error)
	// PruneRuns deletes all but the newest keep runs and returns how many were removed.
	PruneRuns(ctx context.Context, keep int) (int, error)
}

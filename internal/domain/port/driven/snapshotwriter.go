package driven

import (
	"context"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
)

// SnapshotWriter defines the driven port for publishing encoded snapshots.
// Publish replaces the previous documents of the same kinds as one batch: a
// failure before the batch is complete leaves the previous documents in place.
type SnapshotWriter interface {
	Publish(ctx context.Context, docs []model.SnapshotDocument) error
}

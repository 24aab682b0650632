package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

// ScanService runs one end-to-end scan: resolve the network root, collect its
// members, extract creatures, then build, publish and record the snapshots.
// Steps run sequentially; records are extracted in collection order.
type ScanService struct {
	client      driven.RepositoryClient
	writer      driven.SnapshotWriter
	store       driven.ScanStore
	collector   *Collector
	extractor   *Extractor
	repository  string
	historyKeep int
	now         func() time.Time
	newRunID    func() string
}

// NewScanService creates a ScanService for the configured repository.
// store may be nil, in which case runs are not recorded.
func NewScanService(
	client driven.RepositoryClient,
	writer driven.SnapshotWriter,
	store driven.ScanStore,
	collector *Collector,
	extractor *Extractor,
	repository string,
	historyKeep int,
) *ScanService {
	return &ScanService{
		client:      client,
		writer:      writer,
		store:       store,
		collector:   collector,
		extractor:   extractor,
		repository:  repository,
		historyKeep: historyKeep,
		now:         time.Now,
		newRunID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
}

// WithClock replaces the clock used for run and snapshot timestamps.
func (s *ScanService) WithClock(now func() time.Time) *ScanService {
	s.now = now
	return s
}

// Run executes a scan. Only setup failures are returned: an unresolvable root,
// a canceled context, or a snapshot that could not be published. Failures on
// individual repositories degrade to missing records.
func (s *ScanService) Run(ctx context.Context) (*model.ScanRun, error) {
	started := s.now()

	root, err := s.resolveRoot(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("scanning fork network", "root", root.FullName)

	repos := s.collector.Collect(ctx, *root)
	slog.Info("habitats collected", "root", root.FullName, "count", len(repos))

	records := make([]model.CreatureRecord, 0, len(repos))
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted: %w", err)
		}

		record := s.extractor.Extract(ctx, repo, root.FullName)
		if record == nil {
			slog.Debug("no creature", "repo", repo.FullName)
			continue
		}
		records = append(records, *record)
		slog.Info("creature found",
			"repo", repo.FullName,
			"generation", record.Stats.Generation,
			"rarity_score", record.Stats.RarityScore,
		)
	}

	docs, err := BuildSnapshots(root.FullName, records, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.writer.Publish(ctx, docs); err != nil {
		return nil, fmt.Errorf("publishing snapshots: %w", err)
	}
	for _, doc := range docs {
		slog.Info("snapshot published", "kind", doc.Kind, "bytes", len(doc.Body))
	}

	run := model.ScanRun{
		ID:             s.newRunID(),
		RootRepo:       root.FullName,
		StartedAt:      started,
		FinishedAt:     s.now(),
		ReposScanned:   len(repos),
		CreaturesFound: len(records),
	}
	s.recordRun(ctx, run, docs)

	slog.Info("scan complete",
		"run_id", run.ID,
		"repos", run.ReposScanned,
		"creatures", run.CreaturesFound,
		"duration", run.Duration().Round(time.Millisecond),
	)

	return &run, nil
}

// resolveRoot returns the configured repository, or its parent when the
// configured repository is itself a fork, so the origin's whole network is
// scanned.
func (s *ScanService) resolveRoot(ctx context.Context) (*model.RepositoryRef, error) {
	repo, err := s.client.GetRepository(ctx, s.repository)
	if err != nil {
		return nil, fmt.Errorf("resolving repository %s: %w", s.repository, err)
	}

	if !repo.IsFork || repo.Parent == "" {
		return repo, nil
	}

	slog.Info("configured repository is a fork, scanning parent network",
		"repo", repo.FullName,
		"parent", repo.Parent,
	)

	parent, err := s.client.GetRepository(ctx, repo.Parent)
	if err != nil {
		return nil, fmt.Errorf("resolving parent repository %s: %w", repo.Parent, err)
	}

	return parent, nil
}

// recordRun stores the run in history and prunes old runs. History is best
// effort: the snapshots are already published when this runs.
func (s *ScanService) recordRun(ctx context.Context, run model.ScanRun, docs []model.SnapshotDocument) {
	if s.store == nil {
		return
	}

	if err := s.store.SaveRun(ctx, run, docs); err != nil {
		slog.Error("recording scan run failed", "run_id", run.ID, "error", err)
		return
	}

	if s.historyKeep <= 0 {
		return
	}

	pruned, err := s.store.PruneRuns(ctx, s.historyKeep)
	if err != nil {
		slog.Error("pruning scan history failed", "keep", s.historyKeep, "error", err)
		return
	}
	if pruned > 0 {
		slog.Info("scan history pruned", "removed", pruned, "keep", s.historyKeep)
	}
}

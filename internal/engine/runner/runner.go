// Package runner implements the sequential cached execution of a stage
// pipeline.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/larsclaussen/kiln/internal/core/domain"
	"github.com/larsclaussen/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options carries the per-run settings for a pipeline execution.
type Options struct {
	// Root is the build root that relative recipe paths resolve against.
	Root string
	// Force bypasses cache reads. Fresh records are still written.
	Force bool
}

// PlannedStage is one row of a dry-run: the stage, its computed key, and
// whether a usable record exists for it.
type PlannedStage struct {
	Name     string
	Kind     domain.StageKind
	CacheKey string
	Cached   bool
}

// Runner executes pipelines stage by stage, strictly in order. The first
// failure aborts the run; a re-run restarts from the highest still-valid
// cached stage.
type Runner struct {
	engine    ports.Engine
	hasher    ports.Hasher
	store     ports.StageRecordStore
	telemetry ports.Telemetry

	mu       sync.RWMutex
	statuses map[domain.InternedString]domain.StageStatus
}

// NewRunner creates a new Runner.
func NewRunner(
	engine ports.Engine,
	hasher ports.Hasher,
	store ports.StageRecordStore,
	telemetry ports.Telemetry,
) *Runner {
	return &Runner{
		engine:    engine,
		hasher:    hasher,
		store:     store,
		telemetry: telemetry,
		statuses:  make(map[domain.InternedString]domain.StageStatus),
	}
}

// Status returns the lifecycle state of the named stage.
func (r *Runner) Status(name domain.InternedString) domain.StageStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statuses[name]
}

func (r *Runner) setStatus(name domain.InternedString, status domain.StageStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[name] = status
}

// Run executes the pipeline and returns the final snapshot, tagged with the
// pipeline's target when one is set.
func (r *Runner) Run(ctx context.Context, pipeline *domain.Pipeline, opts Options) (domain.Snapshot, error) {
	if err := pipeline.Validate(); err != nil {
		return domain.Snapshot{}, err
	}

	for stage := range pipeline.Walk() {
		r.setStatus(stage.Name, domain.StatusPending)
	}

	var parent domain.Snapshot
	parentKey := ""
	for stage := range pipeline.Walk() {
		snapshot, key, err := r.runStage(ctx, &stage, parent, parentKey, opts)
		if err != nil {
			r.setStatus(stage.Name, domain.StatusFailed)
			return domain.Snapshot{}, zerr.With(
				zerr.Wrap(err, domain.ErrStageFailed.Error()),
				"stage", stage.Name.String(),
			)
		}
		parent, parentKey = snapshot, key
	}

	if target := pipeline.Target.String(); target != "" {
		if err := r.engine.Tag(ctx, parent, target); err != nil {
			return domain.Snapshot{}, err
		}
	}

	return parent, nil
}

// runStage computes the stage's key, honors a still-valid cached snapshot
// unless forced, and otherwise applies the stage through the engine.
func (r *Runner) runStage(ctx context.Context, stage *domain.Stage, parent domain.Snapshot, parentKey string, opts Options) (domain.Snapshot, string, error) {
	key, err := r.hasher.ComputeStageKey(stage, parentKey, opts.Root)
	if err != nil {
		return domain.Snapshot{}, "", err
	}

	ctx, vertex := r.telemetry.Record(ctx, stage.Name.String())
	r.setStatus(stage.Name, domain.StatusRunning)

	if !opts.Force {
		snapshot, hit, err := r.lookupSnapshot(ctx, stage, key)
		if err != nil {
			vertex.Complete(err)
			return domain.Snapshot{}, "", err
		}
		if hit {
			vertex.Cached()
			r.setStatus(stage.Name, domain.StatusCached)
			return snapshot, key, nil
		}
	}

	snapshot, err := r.engine.Apply(ctx, parent, stage, ports.ApplyOptions{
		Root:   opts.Root,
		Ref:    snapshotRef(stage.Name, key),
		Output: vertex.Stdout(),
	})
	vertex.Complete(err)
	if err != nil {
		return domain.Snapshot{}, "", err
	}

	if err := r.store.Put(domain.StageRecord{
		StageName:   stage.Name.String(),
		CacheKey:    key,
		SnapshotID:  snapshot.ID.String(),
		SnapshotRef: snapshot.Ref.String(),
		Timestamp:   time.Now(),
	}); err != nil {
		return domain.Snapshot{}, "", zerr.Wrap(err, "failed to record stage snapshot")
	}

	r.setStatus(stage.Name, domain.StatusCompleted)
	return snapshot, key, nil
}

// lookupSnapshot resolves a cache key to a snapshot that still exists in the
// engine. A record whose snapshot is gone is stale and reports a miss.
func (r *Runner) lookupSnapshot(ctx context.Context, stage *domain.Stage, key string) (domain.Snapshot, bool, error) {
	record, err := r.store.Get(key)
	if err != nil {
		return domain.Snapshot{}, false, zerr.Wrap(err, "failed to read stage record")
	}
	if record == nil {
		return domain.Snapshot{}, false, nil
	}

	snapshot := domain.Snapshot{
		ID:        domain.NewInternedString(record.SnapshotID),
		Ref:       domain.NewInternedString(record.SnapshotRef),
		StageName: stage.Name,
	}
	exists, err := r.engine.SnapshotExists(ctx, snapshot)
	if err != nil {
		return domain.Snapshot{}, false, zerr.Wrap(err, "failed to verify recorded snapshot")
	}
	if !exists {
		return domain.Snapshot{}, false, nil
	}
	return snapshot, true, nil
}

// Plan computes every stage key against the store without touching the
// engine backend. Hits are reported from records alone; the run itself still
// verifies the snapshot exists.
func (r *Runner) Plan(_ context.Context, pipeline *domain.Pipeline, root string) ([]PlannedStage, error) {
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}

	var plan []PlannedStage
	parentKey := ""
	for stage := range pipeline.Walk() {
		key, err := r.hasher.ComputeStageKey(&stage, parentKey, root)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to plan stage"), "stage", stage.Name.String())
		}
		record, err := r.store.Get(key)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to read stage record")
		}
		plan = append(plan, PlannedStage{
			Name:     stage.Name.String(),
			Kind:     stage.Kind,
			CacheKey: key,
			Cached:   record != nil,
		})
		parentKey = key
	}
	return plan, nil
}

// snapshotRef derives the addressable per-stage reference for a cache key.
func snapshotRef(name domain.InternedString, key string) string {
	return fmt.Sprintf("kiln/%s:%s", name.String(), key)
}

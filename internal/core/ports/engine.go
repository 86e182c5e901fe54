package ports

import (
	"context"
	"io"

	"github.com/larsclaussen/kiln/internal/core/domain"
)

// ApplyOptions carries the per-run context an engine needs to materialize
// a stage's declared file inputs.
type ApplyOptions struct {
	// Root is the build root relative paths are resolved against.
	Root string
	// Ref is the reference the resulting snapshot should be addressable by.
	Ref string
	// Output receives the engine's progress stream. Nil discards it.
	Output io.Writer
}

// Engine applies stages to immutable snapshots.
//
// Implementations own the filesystem-state backend (a container engine in
// production). Apply must never mutate the parent snapshot: it produces a
// new one or fails.
//
//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks
type Engine interface {
	// Apply executes one stage on top of parent and returns the new snapshot.
	// For the base stage, parent is the zero Snapshot.
	Apply(ctx context.Context, parent domain.Snapshot, stage *domain.Stage, opts ApplyOptions) (domain.Snapshot, error)

	// SnapshotExists reports whether a previously recorded snapshot is still
	// present in the backend. Stale records are re-executed, not trusted.
	SnapshotExists(ctx context.Context, snapshot domain.Snapshot) (bool, error)

	// Tag makes the snapshot addressable under the given target reference.
	Tag(ctx context.Context, snapshot domain.Snapshot, target string) error
}

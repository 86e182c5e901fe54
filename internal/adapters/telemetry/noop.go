package telemetry

import (
	"context"
	"io"

	"github.com/larsclaussen/kiln/internal/core/ports"
)

// NoOp is a telemetry implementation that records nothing. Plan runs and
// tests use it.
type NoOp struct{}

// NewNoOp creates a new NoOp recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Record returns a vertex that discards everything.
func (n *NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noOpVertex{}
}

// Close does nothing.
func (n *NoOp) Close() error {
	return nil
}

type noOpVertex struct{}

func (noOpVertex) Stdout() io.Writer { return io.Discard }
func (noOpVertex) Stderr() io.Writer { return io.Discard }
func (noOpVertex) Complete(error)    {}
func (noOpVertex) Cached()           {}

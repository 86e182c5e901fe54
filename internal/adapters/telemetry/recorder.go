// Package telemetry provides the Progrock implementation of the build
// progress recorder.
package telemetry

import (
	"context"
	"os"

	"github.com/larsclaussen/kiln/internal/core/ports"
	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
)

// Recorder implements ports.Telemetry using the progrock library.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a Recorder that prints stage progress and captured engine
// output to stderr.
func New() ports.Telemetry {
	return NewRecorder(NewConsoleWriter(os.Stderr))
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Record starts recording a new vertex for the named unit of work.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return ctx, &Vertex{vertex: v}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

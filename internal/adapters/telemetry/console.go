package telemetry

import (
	"fmt"
	"io"
	"sync"

	"github.com/vito/progrock"
)

var _ progrock.Writer = (*ConsoleWriter)(nil)

// ConsoleWriter renders progress updates as plain lines on a writer. Stage
// lifecycle transitions become one line each; captured engine output is
// forwarded verbatim, so a failing stage's build log reaches the user.
type ConsoleWriter struct {
	mu    sync.Mutex
	out   io.Writer
	names map[string]string
	done  map[string]bool
}

// NewConsoleWriter creates a ConsoleWriter printing to out.
func NewConsoleWriter(out io.Writer) *ConsoleWriter {
	return &ConsoleWriter{
		out:   out,
		names: make(map[string]string),
		done:  make(map[string]bool),
	}
}

// WriteStatus renders one status update.
func (c *ConsoleWriter) WriteStatus(update *progrock.StatusUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range update.Vertexes {
		if v.Name == "" {
			continue
		}
		if _, seen := c.names[v.Id]; !seen {
			c.names[v.Id] = v.Name
			fmt.Fprintf(c.out, "=> %s\n", v.Name)
		}
		if c.done[v.Id] {
			continue
		}
		switch {
		case v.Cached:
			c.done[v.Id] = true
			fmt.Fprintf(c.out, "=> %s cached\n", v.Name)
		case v.Error != nil:
			c.done[v.Id] = true
			fmt.Fprintf(c.out, "=> %s failed: %s\n", v.Name, *v.Error)
		case v.Completed != nil:
			c.done[v.Id] = true
			fmt.Fprintf(c.out, "=> %s done\n", v.Name)
		}
	}

	for _, log := range update.Logs {
		_, _ = c.out.Write(log.Data)
	}

	return nil
}

// Close implements progrock.Writer. The underlying writer is not owned by
// the console and stays open.
func (c *ConsoleWriter) Close() error {
	return nil
}

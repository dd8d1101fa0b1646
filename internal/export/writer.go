package export

import (
	"io"

	"github.com/nao1215/traveller/internal/graph"
)

// Writer renders a graph in one output format.
type Writer interface {
	// Write outputs g to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(g *graph.Graph) (int, error)
}

// countingWriter counts the bytes that pass through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// baseWriter provides common functionality for the format writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nao1215/traveller/internal/graph"
)

// DOTWriter outputs the graph in the Graphviz DOT language. Nodes are
// numbered by index and labeled room_<id>, user_<id> or server_<id>.
// Edges carry no label.
type DOTWriter struct {
	baseWriter
}

// NewDOTWriter creates a DOTWriter that outputs to the given writer.
func NewDOTWriter(output io.Writer) *DOTWriter {
	return &DOTWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs g as an undirected DOT graph.
func (w *DOTWriter) Write(g *graph.Graph) (int, error) {
	cw := &countingWriter{w: w.output}
	bw := bufio.NewWriter(cw)

	fmt.Fprintln(bw, "graph {")
	for i, n := range g.Nodes() {
		fmt.Fprintf(bw, "    %d [ label = %q ]\n", i, n.Label())
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "    %d -- %d [ ]\n", e.A, e.B)
	}
	fmt.Fprintln(bw, "}")

	err := bw.Flush()
	return cw.n, err
}

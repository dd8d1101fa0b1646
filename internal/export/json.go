package export

import (
	"encoding/json"
	"io"

	"github.com/nao1215/traveller/internal/graph"
)

// JSONWriter outputs the graph snapshot as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentString is the indentation per level.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON using indent for each level.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentString = indent
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
// Output is compact unless WithIndent is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the snapshot of g followed by a newline.
func (w *JSONWriter) Write(g *graph.Graph) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(g.Snapshot(), "", w.indentString)
	} else {
		data, err = json.Marshal(g.Snapshot())
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// ReadJSON reads a graph written by JSONWriter.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var s graph.Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return graph.FromSnapshot(s)
}

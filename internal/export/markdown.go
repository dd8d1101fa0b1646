package export

import (
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/traveller/internal/graph"
)

// SummaryWriter outputs node, edge and degree statistics in Markdown.
type SummaryWriter struct {
	baseWriter

	startedAt time.Time
}

// SummaryWriterOption configures a SummaryWriter.
type SummaryWriterOption func(*SummaryWriter)

// WithStartedAt adds the crawl start time to the summary header.
func WithStartedAt(t time.Time) SummaryWriterOption {
	return func(w *SummaryWriter) {
		w.startedAt = t
	}
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer, opts ...SummaryWriterOption) *SummaryWriter {
	w := &SummaryWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary of g.
func (w *SummaryWriter) Write(g *graph.Graph) (int, error) {
	stats := Compute(g)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, stats)
	w.writeDegrees(md, stats)
	w.writeDistribution(md, stats)

	return len(md.String()), md.Build()
}

func (w *SummaryWriter) writeHeader(md *markdown.Markdown, stats Statistics) {
	md.H1("Crawl Summary")
	md.PlainText("")

	rows := [][]string{}
	if !w.startedAt.IsZero() {
		rows = append(rows, []string{"Started", w.startedAt.UTC().Format(time.RFC3339)})
	}
	rows = append(rows,
		[]string{"Nodes", strconv.Itoa(stats.Nodes)},
		[]string{"Edges", strconv.Itoa(stats.Edges)},
	)
	for _, ds := range stats.PerKind {
		rows = append(rows, []string{pluralKind(ds.Kind), strconv.Itoa(ds.Count)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *SummaryWriter) writeDegrees(md *markdown.Markdown, stats Statistics) {
	md.H2("Degrees")
	md.PlainText("")

	rows := make([][]string, 0, len(stats.PerKind))
	for _, ds := range stats.PerKind {
		rows = append(rows, []string{
			ds.Kind.String(),
			strconv.Itoa(ds.Min),
			strconv.Itoa(ds.Max),
			strconv.FormatFloat(ds.Mean, 'f', 2, 64),
			strconv.FormatFloat(ds.Median, 'f', 1, 64),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Min", "Max", "Mean", "Median"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *SummaryWriter) writeDistribution(md *markdown.Markdown, stats Statistics) {
	md.H2("Degree Distribution")
	md.PlainText("")

	if len(stats.Distribution) == 0 {
		md.PlainText("The graph is empty.")
		return
	}

	degrees := slices.Sorted(maps.Keys(stats.Distribution))
	rows := make([][]string, 0, len(degrees))
	for _, d := range degrees {
		rows = append(rows, []string{strconv.Itoa(d), strconv.Itoa(stats.Distribution[d])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Degree", "Nodes"},
		Rows:   rows,
	})
}

func pluralKind(k graph.Kind) string {
	switch k {
	case graph.KindRoom:
		return "Rooms"
	case graph.KindUser:
		return "Users"
	case graph.KindServer:
		return "Servers"
	default:
		return k.String()
	}
}

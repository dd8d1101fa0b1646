package export

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/traveller/internal/model"
)

// HistoryWriter lists recorded runs, as a Markdown table or as aligned text.
type HistoryWriter struct {
	baseWriter

	markdown bool
}

// NewHistoryWriter creates a HistoryWriter. With asMarkdown the runs are
// written as a Markdown document, otherwise as a plain text table.
func NewHistoryWriter(output io.Writer, asMarkdown bool) *HistoryWriter {
	return &HistoryWriter{
		baseWriter: newBaseWriter(output),
		markdown:   asMarkdown,
	}
}

var historyHeader = []string{"ID", "Kind", "Status", "Started", "Duration", "Result", "Output"}

// Write outputs runs in the given order.
func (w *HistoryWriter) Write(runs []*model.Run) (int, error) {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			shortID(r.ID),
			r.Kind.String(),
			r.Status.String(),
			r.StartedAt.UTC().Format(time.RFC3339),
			r.Duration().Round(time.Second).String(),
			runResult(r),
			r.OutputDir,
		})
	}

	if w.markdown {
		md := markdown.NewMarkdown(w.output)
		md.H1("Run History")
		md.PlainText("")
		if len(rows) == 0 {
			md.PlainText("No runs recorded.")
		} else {
			md.Table(markdown.TableSet{Header: historyHeader, Rows: rows})
		}
		return len(md.String()), md.Build()
	}

	cw := &countingWriter{w: w.output}
	tw := tabwriter.NewWriter(cw, 0, 0, 2, ' ', 0)
	writeTabbed(tw, historyHeader)
	for _, row := range rows {
		writeTabbed(tw, row)
	}
	err := tw.Flush()
	return cw.n, err
}

func writeTabbed(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

// runResult renders the counters that matter for the run's kind.
func runResult(r *model.Run) string {
	if r.Status == model.StatusFailed {
		return "error: " + r.Error
	}
	switch r.Kind {
	case model.RunCrawl:
		return fmt.Sprintf("%d rooms, %d users, %d servers", r.Rooms, r.Users, r.Servers)
	case model.RunJoin:
		return fmt.Sprintf("%d joined, %d invites", r.Joined, r.Invites)
	case model.RunLeave:
		return strconv.Itoa(r.LeftRooms) + " left"
	default:
		return ""
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package export

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/traveller/internal/graph"
)

// File names inside a run directory.
const (
	JSONFile    = "graph.json"
	GraphMLFile = "graph.graphml"
	DOTFile     = "graph.dot"
	SVGFile     = "graph.svg"
	SummaryFile = "summary.md"
)

// DirLayout is the time layout of run directory names.
const DirLayout = "20060102T150405Z"

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Exporter writes a graph into a fresh run directory under a root directory.
type Exporter struct {
	root      string
	renderSVG bool
	indent    string
	logger    *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithSVG enables rendering graph.svg from the DOT export.
func WithSVG(enabled bool) Option {
	return func(e *Exporter) {
		e.renderSVG = enabled
	}
}

// WithJSONIndent pretty-prints graph.json with the given indentation.
func WithJSONIndent(indent string) Option {
	return func(e *Exporter) {
		e.indent = indent
	}
}

// WithLogger sets the logger of the exporter.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Exporter that creates run directories under root.
func New(root string, opts ...Option) *Exporter {
	e := &Exporter{
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes a finished export.
type Result struct {
	// Dir is the run directory.
	Dir string
	// Files lists the file names written into Dir, sorted.
	Files []string
}

// RunDir returns the directory a crawl started at startedAt exports into.
func (e *Exporter) RunDir(startedAt time.Time) string {
	return filepath.Join(e.root, startedAt.UTC().Format(DirLayout))
}

// Export writes g in every format into the run directory of startedAt.
// The formats are independent and are written concurrently. The first
// failure cancels the rest and is returned.
func (e *Exporter) Export(ctx context.Context, g *graph.Graph, startedAt time.Time) (*Result, error) {
	if g == nil {
		return nil, ErrNoGraph
	}

	dir := e.RunDir(startedAt)
	if err := os.MkdirAll(e.root, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.Mkdir(dir, dirPerm); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, dir)
		}
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	var jsonOpts []JSONWriterOption
	if e.indent != "" {
		jsonOpts = append(jsonOpts, WithIndent(e.indent))
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return writeFile(egCtx, filepath.Join(dir, JSONFile), func(w io.Writer) error {
			_, err := NewJSONWriter(w, jsonOpts...).Write(g)
			return err
		})
	})
	eg.Go(func() error {
		return writeFile(egCtx, filepath.Join(dir, GraphMLFile), func(w io.Writer) error {
			_, err := NewGraphMLWriter(w).Write(g)
			return err
		})
	})
	eg.Go(func() error {
		return writeFile(egCtx, filepath.Join(dir, SummaryFile), func(w io.Writer) error {
			_, err := NewSummaryWriter(w, WithStartedAt(startedAt)).Write(g)
			return err
		})
	})
	eg.Go(func() error {
		var dot bytes.Buffer
		if _, err := NewDOTWriter(&dot).Write(g); err != nil {
			return err
		}
		if err := writeFile(egCtx, filepath.Join(dir, DOTFile), func(w io.Writer) error {
			_, err := w.Write(dot.Bytes())
			return err
		}); err != nil {
			return err
		}
		if !e.renderSVG {
			return nil
		}
		return writeFile(egCtx, filepath.Join(dir, SVGFile), func(w io.Writer) error {
			return RenderSVG(egCtx, dot.Bytes(), w)
		})
	})

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to export graph: %w", err)
	}

	files := []string{JSONFile, GraphMLFile, DOTFile, SummaryFile}
	if e.renderSVG {
		files = append(files, SVGFile)
	}
	slices.Sort(files)

	e.logger.Info("exported graph",
		"dir", dir,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
	)
	return &Result{Dir: dir, Files: files}, nil
}

// writeFile creates path exclusively with private permissions and lets fn
// fill it through a buffered writer.
func writeFile(ctx context.Context, path string, fn func(io.Writer) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", filepath.Base(path), cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return bw.Flush()
}

package export

import "errors"

var (
	// ErrNoGraph is returned when the exporter is called without a graph.
	ErrNoGraph = errors.New("no graph to export")

	// ErrOutputExists is returned when the run directory already exists.
	ErrOutputExists = errors.New("output directory already exists")
)

package pipeline

import "errors"

var (
	// ErrMalformedGraph is returned by the validate step when a node of the
	// crawled graph breaks the room, user or server invariant.
	ErrMalformedGraph = errors.New("crawled graph is malformed")

	// ErrMissingGraph is returned when a step runs before the step that
	// produces its input graph.
	ErrMissingGraph = errors.New("no graph in crawl report")
)

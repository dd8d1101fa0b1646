package graph

import "errors"

// Graph mutation and decoding errors.
var (
	// ErrSelfLoop is returned when an edge would connect a node to itself.
	// Crawl graphs never contain self-loops because every edge joins two
	// nodes of different kinds.
	ErrSelfLoop = errors.New("self-loop edges are not allowed")

	// ErrNodeOutOfRange is returned when a NodeIndex does not refer to a node
	// of the graph.
	ErrNodeOutOfRange = errors.New("node index out of range")

	// ErrUnknownKind is returned when a node kind string cannot be parsed.
	ErrUnknownKind = errors.New("unknown node kind")
)

package graph

import (
	"log/slog"
)

// Degrees counts the neighbors of a node by kind.
type Degrees struct {
	Rooms   int
	Users   int
	Servers int
}

// DegreesOf returns the neighbor-kind counts of node i.
func DegreesOf(g *Graph, i NodeIndex) Degrees {
	var d Degrees
	for _, n := range g.adj[i] {
		switch g.nodes[n].Kind {
		case KindRoom:
			d.Rooms++
		case KindUser:
			d.Users++
		case KindServer:
			d.Servers++
		}
	}
	return d
}

// Validator checks the structural invariants of a crawl graph.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a Validator that reports failures to logger.
// If logger is nil, slog.Default() is used.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// IsWellformed reports whether every node of g satisfies its invariant.
// The first offending node is logged with its full neighbor-kind counts.
func (v *Validator) IsWellformed(g *Graph) bool {
	for i := range g.nodes {
		idx := NodeIndex(i)
		if !IsWellformedNode(g, idx) {
			d := DegreesOf(g, idx)
			v.logger.Error("malformed graph node",
				"index", idx,
				"node", g.nodes[i].Label(),
				"room_neighbors", d.Rooms,
				"user_neighbors", d.Users,
				"server_neighbors", d.Servers,
			)
			return false
		}
	}
	return true
}

// IsWellformedNode checks the invariant for the kind of node i:
//
//   - Room: ≥1 user and ≥1 server neighbor
//   - User: exactly 1 server and ≥1 room neighbor
//   - Server: ≥1 user and ≥1 room neighbor
func IsWellformedNode(g *Graph, i NodeIndex) bool {
	d := DegreesOf(g, i)
	switch g.nodes[i].Kind {
	case KindRoom:
		return d.Users >= 1 && d.Servers >= 1
	case KindUser:
		return d.Servers == 1 && d.Rooms >= 1
	case KindServer:
		return d.Users >= 1 && d.Rooms >= 1
	default:
		return false
	}
}

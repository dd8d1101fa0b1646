package graph

import (
	"fmt"
)

// Snapshot is the serializable form of a Graph: the node arena plus the edge
// list as pairs of node indexes.
type Snapshot struct {
	Nodes []Node         `json:"nodes"`
	Edges [][2]NodeIndex `json:"edges"`
}

// Snapshot captures g. Nodes keep their handles, edges keep insertion order.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Nodes: g.Nodes(),
		Edges: make([][2]NodeIndex, len(g.edges)),
	}
	for i, e := range g.edges {
		s.Edges[i] = [2]NodeIndex{e.A, e.B}
	}
	return s
}

// FromSnapshot rebuilds a graph from s. The result has the same node handles
// and the same edges as the graph the snapshot was taken from.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	for _, n := range s.Nodes {
		g.AddNode(n)
	}
	for i, e := range s.Edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return g, nil
}

package graph

import (
	"fmt"
	"strings"
)

// Kind is the type of a node.
type Kind uint8

const (
	// KindRoom is a chat room.
	KindRoom Kind = iota
	// KindUser is an account.
	KindUser
	// KindServer is a home-server.
	KindServer
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindUser:
		return "user"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so that kinds serialize as
// "room", "user" and "server" in JSON snapshots.
func (k Kind) MarshalText() ([]byte, error) {
	if k > KindServer {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "room":
		return KindRoom, nil
	case "user":
		return KindUser, nil
	case "server":
		return KindServer, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Node is a vertex of the crawl graph.
//
// Before anonymization ID is the fingerprint of the real identifier and is
// only meaningful for deduplication. After anonymization ID is a salted keyed
// hash that cannot be compared across runs.
type Node struct {
	Kind Kind   `json:"kind"`
	ID   uint64 `json:"id"`
}

// Label renders the node as "<kind>_<id>", the human-readable form used by
// the GraphML and DOT exports.
func (n Node) Label() string {
	return fmt.Sprintf("%s_%d", n.Kind, n.ID)
}

// String implements fmt.Stringer.
func (n Node) String() string {
	return n.Label()
}

// NodeIndex is a stable handle to a node in a Graph.
type NodeIndex int

// Edge is an undirected edge between two nodes.
// A and B keep the order in which the edge was added.
type Edge struct {
	A NodeIndex
	B NodeIndex
}

// edgeKey is the order-independent identity of an edge.
type edgeKey struct {
	lo, hi NodeIndex
}

func keyOf(a, b NodeIndex) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// Graph is an undirected multi-kind graph stored as an arena of nodes with
// parallel adjacency lists.
//
// A Graph is not safe for concurrent mutation. During a crawl it is owned by a
// single Builder; after export it is read-only.
type Graph struct {
	nodes []Node
	adj   [][]NodeIndex
	edges []Edge

	// edgeSet counts edges per endpoint pair. Plain AddEdge may add parallel
	// edges, UpdateEdge never does.
	edgeSet map[edgeKey]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make([]Node, 0),
		adj:     make([][]NodeIndex, 0),
		edges:   make([]Edge, 0),
		edgeSet: make(map[edgeKey]int),
	}
}

// AddNode appends a node and returns its handle.
func (g *Graph) AddNode(n Node) NodeIndex {
	g.nodes = append(g.nodes, n)
	g.adj = append(g.adj, nil)
	return NodeIndex(len(g.nodes) - 1)
}

// AddEdge adds an edge between a and b unconditionally.
func (g *Graph) AddEdge(a, b NodeIndex) error {
	if err := g.checkEndpoints(a, b); err != nil {
		return err
	}
	g.edges = append(g.edges, Edge{A: a, B: b})
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	g.edgeSet[keyOf(a, b)]++
	return nil
}

// UpdateEdge adds an edge between a and b unless one already exists.
// It reports whether a new edge was created.
func (g *Graph) UpdateEdge(a, b NodeIndex) (bool, error) {
	if err := g.checkEndpoints(a, b); err != nil {
		return false, err
	}
	if g.edgeSet[keyOf(a, b)] > 0 {
		return false, nil
	}
	return true, g.AddEdge(a, b)
}

func (g *Graph) checkEndpoints(a, b NodeIndex) error {
	if !g.contains(a) {
		return fmt.Errorf("%w: %d", ErrNodeOutOfRange, a)
	}
	if !g.contains(b) {
		return fmt.Errorf("%w: %d", ErrNodeOutOfRange, b)
	}
	if a == b {
		return fmt.Errorf("%w: node %d", ErrSelfLoop, a)
	}
	return nil
}

func (g *Graph) contains(i NodeIndex) bool {
	return i >= 0 && int(i) < len(g.nodes)
}

// HasEdge reports whether at least one edge joins a and b.
func (g *Graph) HasEdge(a, b NodeIndex) bool {
	return g.edgeSet[keyOf(a, b)] > 0
}

// Node returns the node stored at i. It panics if i is out of range, like a
// slice access would.
func (g *Graph) Node(i NodeIndex) Node {
	return g.nodes[i]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns a copy of the node arena in index order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Neighbors returns the neighbors of i, one entry per incident edge.
func (g *Graph) Neighbors(i NodeIndex) []NodeIndex {
	out := make([]NodeIndex, len(g.adj[i]))
	copy(out, g.adj[i])
	return out
}

// Degree returns the number of edges incident to i.
func (g *Graph) Degree(i NodeIndex) int {
	return len(g.adj[i])
}

// CountByKind returns how many nodes of each kind the graph holds.
func (g *Graph) CountByKind() map[Kind]int {
	counts := map[Kind]int{KindRoom: 0, KindUser: 0, KindServer: 0}
	for _, n := range g.nodes {
		counts[n.Kind]++
	}
	return counts
}

// Map returns a new graph with the same topology whose nodes are the result
// of applying fn to each node of g. Node handles and edge order are kept.
func (g *Graph) Map(fn func(Node) Node) *Graph {
	out := &Graph{
		nodes:   make([]Node, len(g.nodes)),
		adj:     make([][]NodeIndex, len(g.adj)),
		edges:   make([]Edge, len(g.edges)),
		edgeSet: make(map[edgeKey]int, len(g.edgeSet)),
	}
	for i, n := range g.nodes {
		out.nodes[i] = fn(n)
	}
	for i, neighbors := range g.adj {
		out.adj[i] = append([]NodeIndex(nil), neighbors...)
	}
	copy(out.edges, g.edges)
	for k, v := range g.edgeSet {
		out.edgeSet[k] = v
	}
	return out
}

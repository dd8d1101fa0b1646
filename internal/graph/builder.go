package graph

import (
	"github.com/cespare/xxhash/v2"
)

// Hasher maps a real-world identifier to the provisional node id used during
// the crawl.
type Hasher func(identifier string) uint64

// Builder incrementally builds a crawl graph and guarantees that every room,
// user and server identifier is represented by exactly one node.
//
// The dedup maps are keyed by the identifier itself, not by its hash.
type Builder struct {
	graph *Graph
	hash  Hasher

	rooms   map[string]NodeIndex
	users   map[string]NodeIndex
	servers map[string]NodeIndex
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithHasher sets the function used to derive provisional node ids.
// The default is 64-bit xxHash of the identifier.
func WithHasher(h Hasher) BuilderOption {
	return func(b *Builder) {
		if h != nil {
			b.hash = h
		}
	}
}

// NewBuilder creates a Builder around an empty graph.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		graph:   New(),
		hash:    xxhash.Sum64String,
		rooms:   make(map[string]NodeIndex),
		users:   make(map[string]NodeIndex),
		servers: make(map[string]NodeIndex),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EnsureRoom returns the node of roomID, creating it on first sight.
func (b *Builder) EnsureRoom(roomID string) NodeIndex {
	return b.ensure(b.rooms, KindRoom, roomID)
}

// EnsureServer returns the node of the server name, creating it on first sight.
func (b *Builder) EnsureServer(serverName string) NodeIndex {
	return b.ensure(b.servers, KindServer, serverName)
}

// EnsureUser returns the node of userID, creating it on first sight.
// A newly created user is connected to server right away; a user has exactly
// one home-server, so the edge is never added again.
func (b *Builder) EnsureUser(userID string, server NodeIndex) (NodeIndex, error) {
	if idx, ok := b.users[userID]; ok {
		return idx, nil
	}
	idx := b.ensure(b.users, KindUser, userID)
	if err := b.graph.AddEdge(idx, server); err != nil {
		return idx, err
	}
	return idx, nil
}

// Link records that user is a member of room.
// Callers visit each member once per room, so this is a plain edge add.
func (b *Builder) Link(user, room NodeIndex) error {
	return b.graph.AddEdge(user, room)
}

// Touch records that server has at least one user in room.
// Many users of one server share a room, so the edge is upserted.
func (b *Builder) Touch(server, room NodeIndex) error {
	_, err := b.graph.UpdateEdge(server, room)
	return err
}

func (b *Builder) ensure(index map[string]NodeIndex, kind Kind, identifier string) NodeIndex {
	if idx, ok := index[identifier]; ok {
		return idx
	}
	idx := b.graph.AddNode(Node{Kind: kind, ID: b.hash(identifier)})
	index[identifier] = idx
	return idx
}

// HasRoom reports whether a node for roomID exists.
func (b *Builder) HasRoom(roomID string) bool {
	_, ok := b.rooms[roomID]
	return ok
}

// Counts holds how many distinct identifiers of each kind were ingested.
type Counts struct {
	Rooms   int `json:"rooms"`
	Users   int `json:"users"`
	Servers int `json:"servers"`
}

// Counts returns the sizes of the dedup dictionaries.
func (b *Builder) Counts() Counts {
	return Counts{
		Rooms:   len(b.rooms),
		Users:   len(b.users),
		Servers: len(b.servers),
	}
}

// Graph returns the graph being built.
func (b *Builder) Graph() *Graph {
	return b.graph
}

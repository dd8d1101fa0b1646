// Package graph holds the in-memory relationship graph produced by a crawl.
//
// The graph is undirected and has three node kinds: rooms, users and
// home-servers. Edges carry no data; the relation an edge expresses is
// implied by the kinds of its two endpoints:
//
//   - User–Room: the user was found joined to the room
//   - User–Server: the user is hosted by that server
//   - Server–Room: at least one user of that server is in the room
//
// # Storage
//
// Nodes live in an arena (a slice) and are addressed by stable NodeIndex
// handles. Each node has a parallel adjacency list. A set of normalized
// edge keys makes the idempotent edge upsert O(1).
//
// # Building
//
// Builder owns a Graph plus the three identifier→NodeIndex dictionaries that
// keep every room, user and server unique across the thousands of member
// lists seen during one crawl. The dictionaries are never exported.
//
// # Validation
//
// Validator checks the structural invariants of a finished crawl graph before
// it is anonymized and exported:
//
//   - every Room has at least one User and one Server neighbor
//   - every User has exactly one Server neighbor and at least one Room
//   - every Server has at least one User and one Room neighbor
package graph

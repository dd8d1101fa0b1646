// Package crawler walks the operator account's rooms and turns their member
// lists into a graph.
//
// # Flows
//
// Three flows share this package, each a single pass in enumeration order:
//
//   - RoomCrawler lists member ids of every joined room and feeds them
//     into a graph.Builder.
//   - Joiner follows pending invites and joins operator-supplied aliases.
//   - Leaver leaves and forgets every joined room except the control room.
//
// # Politeness
//
// Every request that touches a room is preceded by a fixed delay. Crawling
// and leaving only talk to the account's own homeserver and use a short
// delay. Joining makes the homeserver federate with every server in the
// room, so joins wait an order of magnitude longer. Rooms are never
// processed in parallel; parallelism would defeat the rate limiting.
//
// All delays return early when the context is cancelled.
package crawler

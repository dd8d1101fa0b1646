// Package matrix is a narrow client for the Matrix client-server API.
//
// It wraps a maunium.net/go/mautrix client and exposes only what the
// traveller needs: listing joined rooms, fetching room members, a filtered
// full-state sync for invites, alias resolution, joining, leaving,
// forgetting, sending a text message and password login. Identifiers cross
// the package boundary as plain strings. Traffic can be routed through a
// SOCKS5 proxy by passing a custom *http.Client.
package matrix

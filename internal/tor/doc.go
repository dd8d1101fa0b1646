// Package tor routes homeserver traffic through a SOCKS5 proxy.
//
// A crawl talks to exactly one homeserver. Operators who do not want that
// homeserver to learn the crawler's address can point it at an existing
// SOCKS5 proxy (usually a local Tor daemon) or let the traveller start an
// embedded Tor daemon through tornago for the duration of the run.
//
// Create a Client and hand the *http.Client it builds to the matrix package;
// nothing in this package keeps global state.
package tor

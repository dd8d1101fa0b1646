// Package pseudonym replaces real identifiers in a crawl graph with keyed
// hashes.
//
// Two hashes are used during a run. Fingerprint is fixed and unsalted; it
// gives every room, user and server a stable provisional id while the graph
// is being built. Once the crawl is complete Anonymize draws a fresh random
// key and salt, rehashes every id with keyed BLAKE2b and discards both. The
// exported ids therefore cannot be linked to the identifiers they came from,
// nor compared between two runs.
package pseudonym

// Package filter decides which room members and room aliases a crawl must
// ignore.
//
// Patterns are regular expressions matched against the whole identifier.
// They are compiled once when the Filter is built and never again.
package filter

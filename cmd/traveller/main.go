// Package main provides the entry point for the traveller CLI.
//
// traveller crawls the rooms a Matrix account has joined and exports the
// pseudonymized membership graph of rooms, users and servers.
//
// Usage:
//
//	traveller login
//	traveller join '#room:example.org'
//	traveller crawl
//	traveller leave
//
// See --help for all available options.
package main

// main is the entry point for traveller.
func main() {
	Execute()
}

// Package database keeps the run history of traveller in SQLite.
//
// Every crawl, join and leave run is recorded with its start and end time,
// its outcome and the counters of its summary. Only counts and output paths
// are stored, never room, user or server identifiers.
//
// The database is a single file opened through modernc.org/sqlite, which
// needs no cgo.
package database

package database

import "errors"

var (
	// ErrNotFound is returned when a run id does not exist.
	ErrNotFound = errors.New("run not found")

	// ErrDatabaseMissing is returned by Open when the database file does not
	// exist and CreateIfNotExists is false.
	ErrDatabaseMissing = errors.New("database not found")
)

package pseudonym

import "errors"

// ErrKeyGeneration is returned when the system random source fails.
var ErrKeyGeneration = errors.New("failed to generate pseudonymization key")

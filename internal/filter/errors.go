package filter

import "errors"

// ErrInvalidPattern is returned when an ignore pattern does not compile.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

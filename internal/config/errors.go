package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoHomeserver is returned when homeserver_url is not set.
	ErrNoHomeserver = errors.New("no homeserver configured: set homeserver_url or run `traveller init`")

	// ErrInvalidHomeserver is returned when homeserver_url is not an http(s) URL.
	ErrInvalidHomeserver = errors.New("invalid homeserver_url: must be an http or https URL")

	// ErrNoControlRoom is returned when control_room is not set.
	ErrNoControlRoom = errors.New("no control room configured: set control_room")

	// ErrInvalidControlRoom is returned when control_room is neither a room
	// id (!...) nor an alias (#...).
	ErrInvalidControlRoom = errors.New("invalid control_room: must start with ! or #")

	// ErrInvalidDelay is returned when a delay or backoff is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidAttempts is returned when member_fetch_attempts is below 1.
	ErrInvalidAttempts = errors.New("invalid member_fetch_attempts: must be at least 1")

	// ErrInvalidTimeout is returned when request_timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid request_timeout: must be positive")

	// ErrInvalidPattern is returned when an ignore pattern is not a valid
	// regular expression.
	ErrInvalidPattern = errors.New("invalid ignore pattern")

	// ErrNoOutputDir is returned when output_dir is empty.
	ErrNoOutputDir = errors.New("no output directory configured")

	// ErrInvalidLogFormat is returned for an unknown --log-format.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text, json or pretty")
)

// Loader errors.
var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrUnsupportedFormat is returned for a config file that is neither
	// YAML nor TOML.
	ErrUnsupportedFormat = errors.New("unsupported configuration file format: use .yaml, .yml or .toml")

	// ErrNoSession is returned when no login session has been stored.
	ErrNoSession = errors.New("no session stored: run `traveller login` first")
)

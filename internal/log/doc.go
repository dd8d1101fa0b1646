// Package log builds the traveller's slog loggers.
//
// Every logger is wrapped in a SecureHandler that masks secrets before they
// reach the output: access tokens, passwords, Authorization headers and
// values that look like Matrix or bearer tokens. Room, user and server
// identifiers are not secrets in this sense and are logged as they are; the
// pseudonymization of the exported graph is a separate concern.
//
// Three output formats are available:
//
//	log.New(os.Stderr, "text", verbose)   // slog.TextHandler
//	log.New(os.Stderr, "json", verbose)   // slog.JSONHandler
//	log.New(os.Stderr, "pretty", verbose) // charmbracelet/log, for terminals
package log

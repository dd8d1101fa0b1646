// Package config holds the traveller's configuration: the homeserver and
// control room to use, crawl pacing, ignore patterns, output location and
// transport. It also stores the login session next to the config file.
package config

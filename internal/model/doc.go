// Package model defines the data structures shared by the crawl pipeline,
// the exporter, the run history and the CLI.
//
// This package contains the following main types:
//   - CrawlReport: the state a crawl accumulates while the pipeline runs
//   - Run: one recorded crawl, join or leave run
//   - RunKind and RunStatus: what a run did and how it ended
//
// Keeping these types here lets the pipeline, export and database packages
// share them without importing each other.
package model

// Package pipeline runs a crawl as an ordered list of steps.
//
// A crawl goes through five steps, each of which reads and extends a shared
// model.CrawlReport:
//
//	list_rooms -> crawl_members -> validate -> anonymize -> export
//
// The pipeline stops at the first failing step by default, so a graph that
// fails validation is never anonymized and never written to disk. Steps run
// one after another on the calling goroutine; there is no parallelism
// between steps or between rooms.
package pipeline

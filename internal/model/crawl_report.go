package model

import (
	"time"

	"github.com/nao1215/traveller/internal/graph"
)

// CrawlReport is the state a crawl accumulates as it moves through the
// pipeline. Each step reads what earlier steps stored and adds its own part.
type CrawlReport struct {
	// StartedAt is when the crawl began. It also names the output directory.
	StartedAt time.Time `json:"started_at"`

	// Rooms lists the joined room ids in enumeration order.
	Rooms []string `json:"rooms"`

	// Graph is the graph with provisional ids, as built by the crawl.
	// It never leaves the process.
	Graph *graph.Graph `json:"-"`

	// Anonymized is Graph with every id pseudonymized. Only this graph is
	// exported.
	Anonymized *graph.Graph `json:"-"`

	// Counts holds the number of distinct rooms, users and servers.
	Counts graph.Counts `json:"counts"`

	// RoomsEmpty is the number of crawled rooms whose members were all
	// ignored.
	RoomsEmpty int `json:"rooms_empty"`

	// MembersIgnored is the number of member entries dropped by the filter.
	MembersIgnored int `json:"members_ignored"`

	// OutputDir is the directory the export step wrote into.
	OutputDir string `json:"output_dir,omitempty"`

	// Files lists the exported files inside OutputDir.
	Files []string `json:"files,omitempty"`

	// PerformedSteps records the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Canceled is true if the crawl was interrupted.
	Canceled bool `json:"canceled"`

	// Error is the fatal error of the crawl, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for a crawl starting at startedAt.
func NewCrawlReport(startedAt time.Time) *CrawlReport {
	return &CrawlReport{
		StartedAt:      startedAt.UTC(),
		Rooms:          make([]string, 0),
		PerformedSteps: make([]string, 0),
	}
}

// Run converts the report into a history entry.
func (r *CrawlReport) Run(id string, finishedAt time.Time) *Run {
	run := &Run{
		ID:        id,
		Kind:      RunCrawl,
		StartedAt: r.StartedAt,
		Rooms:     r.Counts.Rooms,
		Users:     r.Counts.Users,
		Servers:   r.Counts.Servers,
		OutputDir: r.OutputDir,
	}
	run.Finish(finishedAt, r.Error)
	return run
}

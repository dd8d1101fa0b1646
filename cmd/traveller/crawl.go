package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/traveller/internal/crawler"
	"github.com/nao1215/traveller/internal/export"
	"github.com/nao1215/traveller/internal/model"
	"github.com/nao1215/traveller/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl every joined room and export the anonymized graph",
		Long: `Crawl fetches the member list of every room the account has joined and builds
a graph of rooms, users and their homeservers.

Each user is connected to the rooms they are in and to their homeserver, and
each homeserver to the rooms its users are in. Before anything is written
the graph is checked for consistency and every identifier is replaced by a
pseudonym that is only valid for this run.

The result is written to a new directory named after the UTC start time:
  graph.json     lossless graph snapshot
  graph.graphml  GraphML for graph tools
  graph.dot      Graphviz DOT
  summary.md     node, edge and degree statistics
  graph.svg      circo rendering (with --render-svg)

Examples:
  # Crawl with the configured output directory
  traveller crawl

  # Write into a different directory and render an SVG preview
  traveller crawl --output-dir /tmp/graphs --render-svg`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().Bool("render-svg", false, "Also render graph.svg from the DOT export")
	cmd.Flags().StringP("output-dir", "o", "", "Directory receiving the run directory (overrides output_dir)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	renderSVG, err := cmd.Flags().GetBool("render-svg")
	if err != nil {
		return err
	}
	outputDir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if outputDir != "" {
		a.cfg.OutputDir = outputDir
	}
	return runCrawl(ctx, a, renderSVG)
}

// runCrawl builds and runs the crawl pipeline.
func runCrawl(ctx context.Context, a *app, renderSVG bool) error {
	f, err := a.filter()
	if err != nil {
		return err
	}

	c := crawler.NewRoomCrawler(a.client, f,
		crawler.WithDelay(a.cfg.CrawlDelay),
		crawler.WithRetryPolicy(a.retryPolicy()),
		crawler.WithLogger(a.logger),
	)
	exporter := export.New(a.cfg.OutputDir,
		export.WithSVG(renderSVG),
		export.WithLogger(a.logger),
	)

	p := pipeline.New(pipeline.WithLogger(a.logger))
	p.AddSteps(pipeline.CrawlSteps(a.client, c, exporter, a.logger)...)

	report := model.NewCrawlReport(a.now())
	runID := a.beginRun(ctx, model.RunCrawl, report.StartedAt)

	a.logger.Info("starting crawl", "steps", p.StepNames())
	err = p.Execute(ctx, report)
	a.recordRun(report.Run(runID, a.now()))
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	a.logger.Info("crawl finished",
		"rooms", report.Counts.Rooms,
		"users", report.Counts.Users,
		"servers", report.Counts.Servers,
		"ignored_members", report.MembersIgnored,
		"dir", report.OutputDir,
	)
	a.report(ctx, crawlMessage(report))
	return nil
}

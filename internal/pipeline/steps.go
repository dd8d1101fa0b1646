package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/traveller/internal/crawler"
	"github.com/nao1215/traveller/internal/export"
	"github.com/nao1215/traveller/internal/graph"
	"github.com/nao1215/traveller/internal/model"
	"github.com/nao1215/traveller/internal/pseudonym"
)

// RoomLister lists the rooms the crawling account has joined.
type RoomLister interface {
	JoinedRooms(ctx context.Context) ([]string, error)
}

// ListRoomsStep stores the joined rooms in the report.
type ListRoomsStep struct {
	lister RoomLister
	logger *slog.Logger
}

// NewListRoomsStep creates a step that lists rooms with lister.
func NewListRoomsStep(lister RoomLister, logger *slog.Logger) *ListRoomsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListRoomsStep{lister: lister, logger: logger}
}

// Name returns the step name.
func (s *ListRoomsStep) Name() string {
	return "list_rooms"
}

// Do executes the list step.
func (s *ListRoomsStep) Do(ctx context.Context, report *model.CrawlReport) error {
	rooms, err := s.lister.JoinedRooms(ctx)
	if err != nil {
		return err
	}
	report.Rooms = rooms
	s.logger.Info("listed joined rooms", "total", len(rooms))
	return nil
}

// CrawlMembersStep fetches the members of every listed room and builds the
// graph.
type CrawlMembersStep struct {
	crawler *crawler.RoomCrawler
}

// NewCrawlMembersStep creates a step that crawls with c.
func NewCrawlMembersStep(c *crawler.RoomCrawler) *CrawlMembersStep {
	return &CrawlMembersStep{crawler: c}
}

// Name returns the step name.
func (s *CrawlMembersStep) Name() string {
	return "crawl_members"
}

// Do executes the crawl step. The graph built so far is stored even when the
// crawl fails, but later steps never see it.
func (s *CrawlMembersStep) Do(ctx context.Context, report *model.CrawlReport) error {
	err := s.crawler.Crawl(ctx, report.Rooms)

	stats := s.crawler.Stats()
	report.Graph = s.crawler.Graph()
	report.Counts = s.crawler.Counts()
	report.RoomsEmpty = stats.RoomsEmpty
	report.MembersIgnored = stats.MembersIgnored
	return err
}

// ValidateStep checks the graph invariants.
type ValidateStep struct {
	validator *graph.Validator
}

// NewValidateStep creates a validate step that logs the offending node to
// logger.
func NewValidateStep(logger *slog.Logger) *ValidateStep {
	return &ValidateStep{validator: graph.NewValidator(logger)}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validate step.
func (s *ValidateStep) Do(_ context.Context, report *model.CrawlReport) error {
	if report.Graph == nil {
		return ErrMissingGraph
	}
	if !s.validator.IsWellformed(report.Graph) {
		return ErrMalformedGraph
	}
	return nil
}

// Anonymizer replaces every node id of a graph with a pseudonym.
type Anonymizer func(g *graph.Graph) (*graph.Graph, error)

// AnonymizeStep pseudonymizes the crawled graph.
type AnonymizeStep struct {
	anonymize Anonymizer
}

// AnonymizeStepOption configures an AnonymizeStep.
type AnonymizeStepOption func(*AnonymizeStep)

// WithAnonymizer replaces pseudonym.Anonymize.
func WithAnonymizer(fn Anonymizer) AnonymizeStepOption {
	return func(s *AnonymizeStep) {
		if fn != nil {
			s.anonymize = fn
		}
	}
}

// NewAnonymizeStep creates an anonymize step. By default every run draws a
// fresh key and salt.
func NewAnonymizeStep(opts ...AnonymizeStepOption) *AnonymizeStep {
	s := &AnonymizeStep{anonymize: pseudonym.Anonymize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AnonymizeStep) Name() string {
	return "anonymize"
}

// Do executes the anonymize step.
func (s *AnonymizeStep) Do(_ context.Context, report *model.CrawlReport) error {
	if report.Graph == nil {
		return ErrMissingGraph
	}
	anon, err := s.anonymize(report.Graph)
	if err != nil {
		return fmt.Errorf("failed to anonymize graph: %w", err)
	}
	report.Anonymized = anon
	return nil
}

// ExportStep writes the anonymized graph to disk.
type ExportStep struct {
	exporter *export.Exporter
}

// NewExportStep creates an export step.
func NewExportStep(exporter *export.Exporter) *ExportStep {
	return &ExportStep{exporter: exporter}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do executes the export step. Only the anonymized graph is written, the
// crawled graph never is.
func (s *ExportStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.Anonymized == nil {
		return ErrMissingGraph
	}
	res, err := s.exporter.Export(ctx, report.Anonymized, report.StartedAt)
	if err != nil {
		return err
	}
	report.OutputDir = res.Dir
	report.Files = res.Files
	return nil
}

// CrawlSteps returns the five crawl steps in order.
func CrawlSteps(lister RoomLister, c *crawler.RoomCrawler, exporter *export.Exporter, logger *slog.Logger) []Step {
	return []Step{
		NewListRoomsStep(lister, logger),
		NewCrawlMembersStep(c),
		NewValidateStep(logger),
		NewAnonymizeStep(),
		NewExportStep(exporter),
	}
}

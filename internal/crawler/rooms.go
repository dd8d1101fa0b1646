package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/traveller/internal/filter"
	"github.com/nao1215/traveller/internal/graph"
	"github.com/nao1215/traveller/internal/matrix"
	"github.com/nao1215/traveller/internal/pseudonym"
	"github.com/nao1215/traveller/internal/retry"
)

// DefaultCrawlDelay is the pause before each member-list request.
const DefaultCrawlDelay = 500 * time.Millisecond

// RoomCrawler builds the membership graph of a list of rooms.
//
// A RoomCrawler is used for one crawl and is not safe for concurrent use.
type RoomCrawler struct {
	client  MemberSource
	filter  *filter.Filter
	builder *graph.Builder
	logger  *slog.Logger
	delay   time.Duration
	policy  retry.Policy

	// visited holds every room id already crawled in this pass.
	visited map[string]bool
	stats   CrawlStats
}

// CrawlStats counts what a crawl saw besides the graph itself.
type CrawlStats struct {
	// RoomsListed is the number of room ids handed to Crawl.
	RoomsListed int
	// RoomsDuplicate is the number of room ids that were listed again.
	RoomsDuplicate int
	// RoomsEmpty is the number of rooms whose members were all ignored.
	RoomsEmpty int
	// MembersIgnored counts member entries dropped by the filter.
	MembersIgnored int
	// MembersInvalid counts member entries that were not valid user ids.
	MembersInvalid int
}

// RoomCrawlerOption configures a RoomCrawler.
type RoomCrawlerOption func(*RoomCrawler)

// WithDelay sets the pause before each room.
func WithDelay(d time.Duration) RoomCrawlerOption {
	return func(c *RoomCrawler) {
		c.delay = d
	}
}

// WithRetryPolicy sets how member fetches are retried.
func WithRetryPolicy(p retry.Policy) RoomCrawlerOption {
	return func(c *RoomCrawler) {
		c.policy = p
	}
}

// WithLogger sets the logger for progress and diagnostics.
func WithLogger(logger *slog.Logger) RoomCrawlerOption {
	return func(c *RoomCrawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBuilder sets the graph builder members are ingested into.
func WithBuilder(b *graph.Builder) RoomCrawlerOption {
	return func(c *RoomCrawler) {
		if b != nil {
			c.builder = b
		}
	}
}

// NewRoomCrawler creates a crawler that fetches members from client and
// drops those matched by f. A nil filter ignores nobody.
func NewRoomCrawler(client MemberSource, f *filter.Filter, opts ...RoomCrawlerOption) *RoomCrawler {
	if f == nil {
		f = &filter.Filter{}
	}
	c := &RoomCrawler{
		client:  client,
		filter:  f,
		builder: graph.NewBuilder(graph.WithHasher(pseudonym.Fingerprint)),
		logger:  slog.Default(),
		delay:   DefaultCrawlDelay,
		policy:  retry.Once,
		visited: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl visits rooms in order. Before each room it waits for the crawl
// delay, then fetches the member list and ingests it. A room listed twice is
// crawled once. A member fetch that still fails after the retry policy stops
// the crawl with ErrMemberFetch.
func (c *RoomCrawler) Crawl(ctx context.Context, rooms []string) error {
	total := len(rooms)
	c.stats.RoomsListed += total

	for i, roomID := range rooms {
		if c.visited[roomID] {
			c.stats.RoomsDuplicate++
			c.logger.Debug("room already crawled", "room", roomID)
			continue
		}

		if err := Sleep(ctx, c.delay); err != nil {
			return err
		}
		if err := c.CrawlRoom(ctx, roomID); err != nil {
			return err
		}
		c.logger.Info("crawled room", "done", i+1, "total", total)
	}
	return nil
}

// CrawlRoom fetches and ingests a single room without waiting.
func (c *RoomCrawler) CrawlRoom(ctx context.Context, roomID string) error {
	if c.visited[roomID] {
		return nil
	}

	var members []string
	attempt := 0
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		var err error
		members, err = c.client.Members(ctx, roomID)
		if err != nil {
			c.logger.Warn("member fetch failed",
				"room", roomID,
				"attempt", attempt,
				"temporary", matrix.IsTemporary(err),
				"error", err,
			)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMemberFetch, roomID, err)
	}

	c.visited[roomID] = true
	return c.Ingest(roomID, members)
}

// Ingest adds the members of roomID to the graph. Ignored and repeated
// members are skipped. The room node is created with the first member that
// is kept, so a room of ignored members leaves no trace.
func (c *RoomCrawler) Ingest(roomID string, members []string) error {
	seen := make(map[string]bool, len(members))
	var (
		room    graph.NodeIndex
		hasRoom bool
	)

	for _, userID := range members {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		if c.filter.IgnoreMember(userID) {
			c.stats.MembersIgnored++
			continue
		}
		serverName, err := matrix.ServerName(userID)
		if err != nil {
			c.stats.MembersInvalid++
			c.logger.Warn("skipping member", "room", roomID, "error", err)
			continue
		}

		if !hasRoom {
			room = c.builder.EnsureRoom(roomID)
			hasRoom = true
		}
		server := c.builder.EnsureServer(serverName)
		user, err := c.builder.EnsureUser(userID, server)
		if err != nil {
			return fmt.Errorf("failed to add user: %w", err)
		}
		if err := c.builder.Link(user, room); err != nil {
			return fmt.Errorf("failed to link user to room: %w", err)
		}
		if err := c.builder.Touch(server, room); err != nil {
			return fmt.Errorf("failed to link server to room: %w", err)
		}
	}

	if !hasRoom {
		c.stats.RoomsEmpty++
		c.logger.Debug("room has no kept members", "room", roomID)
	}
	return nil
}

// Graph returns the graph built so far.
func (c *RoomCrawler) Graph() *graph.Graph {
	return c.builder.Graph()
}

// Counts returns how many distinct rooms, users and servers were ingested.
func (c *RoomCrawler) Counts() graph.Counts {
	return c.builder.Counts()
}

// Stats returns the crawl statistics.
func (c *RoomCrawler) Stats() CrawlStats {
	return c.stats
}

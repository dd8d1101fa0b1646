package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/traveller/internal/filter"
)

// DefaultJoinDelay is the pause before each join. Joins cross federation
// boundaries, so it is far longer than the crawl delay.
const DefaultJoinDelay = 64 * time.Second

// JoinSummary reports what a join run did.
type JoinSummary struct {
	// Joined is the number of aliases that were joined.
	Joined int `json:"joined"`
	// InvitesFollowed is the number of pending invites that were accepted.
	InvitesFollowed int `json:"invites_followed"`
	// LeftRooms is the number of rooms the account had left before the run.
	LeftRooms int `json:"left_rooms"`
	// Ignored counts invites and aliases skipped by the room filter.
	Ignored int `json:"ignored"`
	// AlreadyKnown counts aliases whose room was joined, invited or left.
	AlreadyKnown int `json:"already_known"`
	// Failed counts invites and aliases that could not be joined.
	Failed int `json:"failed"`
}

// Joiner follows pending invites and joins rooms by alias.
type Joiner struct {
	client MembershipClient
	filter *filter.Filter
	logger *slog.Logger
	delay  time.Duration
}

// JoinerOption configures a Joiner.
type JoinerOption func(*Joiner)

// WithJoinDelay sets the pause before each join.
func WithJoinDelay(d time.Duration) JoinerOption {
	return func(j *Joiner) {
		j.delay = d
	}
}

// WithJoinLogger sets the logger of a Joiner.
func WithJoinLogger(logger *slog.Logger) JoinerOption {
	return func(j *Joiner) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// NewJoiner creates a Joiner. Rooms whose alias matches the room patterns of
// f are never joined.
func NewJoiner(client MembershipClient, f *filter.Filter, opts ...JoinerOption) *Joiner {
	if f == nil {
		f = &filter.Filter{}
	}
	j := &Joiner{
		client: client,
		filter: f,
		logger: slog.Default(),
		delay:  DefaultJoinDelay,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run takes a membership snapshot, follows every pending invite and then
// joins every alias not already known. Only the snapshot is fatal. A failed
// invite or alias is logged and counted.
func (j *Joiner) Run(ctx context.Context, aliases []string) (JoinSummary, error) {
	var sum JoinSummary

	snap, err := j.client.MembershipSnapshot(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to take membership snapshot: %w", err)
	}
	sum.LeftRooms = len(snap.Left)
	j.logger.Info("membership snapshot",
		"joined", len(snap.Joined),
		"invited", len(snap.Invited),
		"left", len(snap.Left),
	)

	for i, inv := range snap.Invited {
		if inv.CanonicalAlias != "" && j.filter.IgnoreRoom(inv.CanonicalAlias) {
			sum.Ignored++
			j.logger.Debug("ignoring invite", "alias", inv.CanonicalAlias)
			continue
		}
		if err := Sleep(ctx, j.delay); err != nil {
			return sum, err
		}

		target := inv.RoomID
		if inv.CanonicalAlias != "" {
			target = inv.CanonicalAlias
		}
		if _, err := j.client.Join(ctx, target); err != nil {
			sum.Failed++
			j.logger.Warn("failed to follow invite", "room", target, "error", err)
			continue
		}
		sum.InvitesFollowed++
		j.logger.Info("followed invite", "done", i+1, "total", len(snap.Invited))
	}

	for i, alias := range aliases {
		if j.filter.IgnoreRoom(alias) {
			sum.Ignored++
			j.logger.Debug("ignoring alias", "alias", alias)
			continue
		}
		if err := Sleep(ctx, j.delay); err != nil {
			return sum, err
		}

		roomID, err := j.client.ResolveAlias(ctx, alias)
		if err != nil {
			sum.Failed++
			j.logger.Warn("failed to resolve alias", "alias", alias, "error", err)
			continue
		}
		if snap.Known(roomID) {
			sum.AlreadyKnown++
			j.logger.Debug("room already known", "alias", alias, "room", roomID)
			continue
		}
		if _, err := j.client.Join(ctx, roomID); err != nil {
			sum.Failed++
			j.logger.Warn("failed to join", "alias", alias, "error", err)
			continue
		}
		sum.Joined++
		j.logger.Info("joined room", "done", i+1, "total", len(aliases))
	}

	return sum, nil
}

package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// LeaveSummary reports what a leave run did.
type LeaveSummary struct {
	// Candidates is the number of joined rooms other than the control room.
	Candidates int `json:"candidates"`
	// Left is the number of rooms that were left and forgotten.
	Left int `json:"left"`
	// Failed counts rooms that could not be left or forgotten.
	Failed int `json:"failed"`
}

// Remaining returns how many candidate rooms the account is still in.
func (s LeaveSummary) Remaining() int {
	return s.Candidates - s.Left
}

// Leaver departs rooms. Each room is left and then forgotten so it does not
// come back as a kicked room on the next sync.
type Leaver struct {
	client LeaveClient
	logger *slog.Logger
	delay  time.Duration
}

// LeaverOption configures a Leaver.
type LeaverOption func(*Leaver)

// WithLeaveDelay sets the pause before each room.
func WithLeaveDelay(d time.Duration) LeaverOption {
	return func(l *Leaver) {
		l.delay = d
	}
}

// WithLeaveLogger sets the logger of a Leaver.
func WithLeaveLogger(logger *slog.Logger) LeaverOption {
	return func(l *Leaver) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLeaver creates a Leaver.
func NewLeaver(client LeaveClient, opts ...LeaverOption) *Leaver {
	l := &Leaver{
		client: client,
		logger: slog.Default(),
		delay:  DefaultCrawlDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run leaves every joined room except controlRoomID. Listing the joined rooms
// is the only fatal step.
func (l *Leaver) Run(ctx context.Context, controlRoomID string) (LeaveSummary, error) {
	var sum LeaveSummary

	joined, err := l.client.JoinedRooms(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to list joined rooms: %w", err)
	}
	rooms := make([]string, 0, len(joined))
	for _, roomID := range joined {
		if roomID != controlRoomID {
			rooms = append(rooms, roomID)
		}
	}
	sum.Candidates = len(rooms)

	for i, roomID := range rooms {
		if err := Sleep(ctx, l.delay); err != nil {
			return sum, err
		}
		if err := l.LeaveOne(ctx, roomID); err != nil {
			sum.Failed++
			l.logger.Warn("failed to leave room", "room", roomID, "error", err)
			continue
		}
		sum.Left++
		l.logger.Info("left room", "done", i+1, "total", len(rooms))
	}
	return sum, nil
}

// LeaveOne leaves and forgets a single room.
func (l *Leaver) LeaveOne(ctx context.Context, roomID string) error {
	if err := l.client.Leave(ctx, roomID); err != nil {
		return err
	}
	if err := l.client.Forget(ctx, roomID); err != nil {
		return err
	}
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/traveller/internal/crawler"
	"github.com/nao1215/traveller/internal/model"
)

// NewLeaveCmd creates the leave command.
func NewLeaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leave [room]",
		Aliases: []string{"exit"},
		Short:   "Leave and forget rooms",
		Long: `Leave departs rooms. Each room is left and then forgotten, so it does not
show up again as a room the account was kicked from.

Without an argument every joined room except the control room is left, one
every crawl_delay. With a room id or alias only that room is left.

Examples:
  # Leave everything except the control room
  traveller leave

  # Leave a single room
  traveller exit '!abcdef:example.org'`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLeaveCmd,
	}
	return cmd
}

// runLeaveCmd executes the leave command.
func runLeaveCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	room := ""
	if len(args) == 1 {
		room = args[0]
	}
	return runLeave(ctx, a, room)
}

// runLeave leaves room, or every room but the control room when room is
// empty.
func runLeave(ctx context.Context, a *app, room string) error {
	leaver := crawler.NewLeaver(a.client,
		crawler.WithLeaveDelay(a.cfg.CrawlDelay),
		crawler.WithLeaveLogger(a.logger),
	)

	startedAt := a.now()
	run := &model.Run{
		ID:        a.beginRun(ctx, model.RunLeave, startedAt),
		Kind:      model.RunLeave,
		StartedAt: startedAt,
	}

	if room != "" {
		err := leaveOne(ctx, a, leaver, room)
		if err == nil {
			run.LeftRooms = 1
		}
		run.Finish(a.now(), err)
		a.recordRun(run)
		return err
	}

	controlRoomID, err := a.controlRoomID(ctx)
	if err != nil {
		run.Finish(a.now(), err)
		a.recordRun(run)
		return err
	}

	a.logger.Info("starting leave", "control_room", controlRoomID)
	sum, err := leaver.Run(ctx, controlRoomID)
	run.LeftRooms = sum.Left
	run.Finish(a.now(), err)
	a.recordRun(run)
	if err != nil {
		return fmt.Errorf("leave failed: %w", err)
	}

	a.logger.Info("leave finished", "left", sum.Left, "candidates", sum.Candidates, "failed", sum.Failed)
	a.report(ctx, leaveMessage(sum))
	return nil
}

func leaveOne(ctx context.Context, a *app, leaver *crawler.Leaver, room string) error {
	roomID, err := a.client.RoomID(ctx, room)
	if err != nil {
		return err
	}
	if err := leaver.LeaveOne(ctx, roomID); err != nil {
		return fmt.Errorf("failed to leave %s: %w", roomID, err)
	}
	a.report(ctx, leaveOneMessage(roomID))
	return nil
}

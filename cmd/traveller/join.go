package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/traveller/internal/crawler"
	"github.com/nao1215/traveller/internal/model"
)

// NewJoinCmd creates the join command.
func NewJoinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join [alias...]",
		Short: "Follow pending invites and join rooms by alias",
		Long: `Join first accepts every pending invite, then joins each given room alias.

Aliases matching room_ignore_patterns are skipped, as are rooms the account
has already joined, been invited to or left. Every join waits join_delay
first (64s by default) because joining makes the homeserver federate with
every server in the room.

A failed join is logged and skipped.

Examples:
  # Join two rooms
  traveller join '#matrix:matrix.org' '#go:example.org'

  # Join every alias listed in a file, one per line
  traveller join --stdin < aliases.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: runJoinCmd,
	}

	cmd.Flags().Bool("stdin", false, "Read aliases from standard input, one per line")

	return cmd
}

// runJoinCmd executes the join command.
func runJoinCmd(cmd *cobra.Command, args []string) error {
	fromStdin, err := cmd.Flags().GetBool("stdin")
	if err != nil {
		return err
	}

	aliases := args
	if fromStdin {
		read, err := readAliases(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read aliases: %w", err)
		}
		aliases = append(aliases, read...)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	return runJoin(ctx, a, aliases)
}

// readAliases reads one alias per line. Blank lines are skipped and
// surrounding whitespace is trimmed.
func readAliases(r io.Reader) ([]string, error) {
	var aliases []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		aliases = append(aliases, line)
	}
	return aliases, scanner.Err()
}

// runJoin runs the join flow and reports its summary.
func runJoin(ctx context.Context, a *app, aliases []string) error {
	f, err := a.filter()
	if err != nil {
		return err
	}

	startedAt := a.now()
	run := &model.Run{
		ID:        a.beginRun(ctx, model.RunJoin, startedAt),
		Kind:      model.RunJoin,
		StartedAt: startedAt,
	}

	joiner := crawler.NewJoiner(a.client, f,
		crawler.WithJoinDelay(a.cfg.JoinDelay),
		crawler.WithJoinLogger(a.logger),
	)
	a.logger.Info("starting join", "aliases", len(aliases), "delay", a.cfg.JoinDelay)
	sum, err := joiner.Run(ctx, aliases)

	run.Joined = sum.Joined
	run.Invites = sum.InvitesFollowed
	run.LeftRooms = sum.LeftRooms
	run.Finish(a.now(), err)
	a.recordRun(run)
	if err != nil {
		return fmt.Errorf("join failed: %w", err)
	}

	a.logger.Info("join finished",
		"joined", sum.Joined,
		"invites", sum.InvitesFollowed,
		"ignored", sum.Ignored,
		"known", sum.AlreadyKnown,
		"failed", sum.Failed,
	)
	a.report(ctx, joinMessage(sum))
	return nil
}

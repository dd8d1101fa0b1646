package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/traveller/internal/database"
	"github.com/nao1215/traveller/internal/export"
)

// defaultHistoryLimit is how many runs are listed unless --limit says otherwise.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crawl, join and leave runs",
		Long: `History lists recorded runs, newest first, with their outcome and the
number of rooms, users and servers they saw.

Examples:
  # Show the last 20 runs
  traveller history

  # Show every run as a markdown table
  traveller history --limit 0 --markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("markdown", false, "Print a markdown table")
	cmd.Flags().Int("limit", defaultHistoryLimit, "Maximum number of runs to list (0 lists all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := export.NewHistoryWriter(cmd.OutOrStdout(), asMarkdown)

	db, err := database.Open(cfg.DBDir, database.Options{})
	if errors.Is(err, database.ErrDatabaseMissing) {
		_, err = w.Write(nil)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	_, err = w.Write(runs)
	return err
}

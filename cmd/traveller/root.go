package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/traveller/internal/config"
)

// NewRootCmd creates the root command for traveller.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traveller",
		Short: "Crawl a federated Matrix network into an anonymized graph",
		Long: `traveller maps the Matrix federation. It walks every room its account has
joined, records which users and servers take part in which rooms, and exports
the result as a graph whose identifiers are replaced by per-run pseudonyms.

Requests are paced deliberately: member lists are fetched one room at a time
and joins wait a full minute each, so crawling stays within the rate limits
of the homeservers involved.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: traveller.yaml in current or XDG config directory)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", config.LogFormatText,
		"Log output format: text, json or pretty")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewJoinCmd())
	cmd.AddCommand(NewLeaveCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/traveller.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = "traveller.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new traveller configuration file",
		Long: `Initialize creates a new traveller.yaml configuration file in the current directory.

The generated file includes:
- The homeserver and control room to fill in
- Default crawl and join delays
- Default member and room ignore patterns

Examples:
  # Create traveller.yaml in current directory
  traveller init

  # Create config file at a specific path
  traveller init -o ~/.config/traveller/traveller.yaml

  # Force overwrite existing file
  traveller init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/traveller.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file and set at least:")
	fmt.Fprintln(out, "  - homeserver_url")
	fmt.Fprintln(out, "  - control_room")
	fmt.Fprintln(out, "\nThen run \"traveller login --user <name>\".")

	return nil
}

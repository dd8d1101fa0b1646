package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/traveller/internal/config"
)

// deviceName is shown in the account's session list.
const deviceName = "traveller"

// errNoPassword is returned when standard input holds no password.
var errNoPassword = errors.New("no password on standard input")

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the homeserver and store the session",
		Long: `Login authenticates the crawling account with a password and stores the
access token for later runs. The password is read from the first line of
standard input so it never shows up in the process list or shell history.

Examples:
  # Prompt-free login from a password manager
  pass show matrix/traveller | traveller login --user traveller`,
		Args: cobra.NoArgs,
		RunE: runLoginCmd,
	}

	cmd.Flags().StringP("user", "u", "", "User name or full user id of the crawling account")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// runLoginCmd executes the login command.
func runLoginCmd(cmd *cobra.Command, _ []string) error {
	user, err := cmd.Flags().GetString("user")
	if err != nil {
		return err
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	creds, err := a.client.Login(ctx, user, password, deviceName)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	path := config.SessionPath(a.cfg.SessionDir)
	session := &config.Session{
		AccessToken: creds.AccessToken,
		UserID:      creds.UserID,
		DeviceID:    creds.DeviceID,
	}
	if err := config.SaveSession(path, session); err != nil {
		return err
	}

	a.logger.Info("logged in", "user", creds.UserID, "device", creds.DeviceID)
	fmt.Fprintf(a.out, "Logged in as %s, session stored in %s\n", creds.UserID, path)
	return nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", errNoPassword
	}
	password := strings.TrimRight(scanner.Text(), "\r")
	if password == "" {
		return "", errNoPassword
	}
	return password, nil
}

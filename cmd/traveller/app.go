package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/traveller/internal/config"
	"github.com/nao1215/traveller/internal/database"
	"github.com/nao1215/traveller/internal/filter"
	"github.com/nao1215/traveller/internal/log"
	"github.com/nao1215/traveller/internal/matrix"
	"github.com/nao1215/traveller/internal/model"
	"github.com/nao1215/traveller/internal/retry"
	"github.com/nao1215/traveller/internal/tor"
)

// app bundles what every network command needs: configuration, logger,
// homeserver client, run history and the optional embedded Tor daemon.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *config.Session
	client  *matrix.Client
	history *database.HistoryDB
	tor     *tor.EmbeddedTor
	out     io.Writer
	now     func() time.Time
}

// getStringFlag retrieves a string flag from the command or the root.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfig builds the configuration from the config file and the global
// flags. It does not validate the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit := getStringFlag(cmd, "config")

	cfg := config.NewConfig()
	if path := config.FindConfigFile(explicit); path != "" {
		loaded, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg = loaded
	} else if explicit != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicit)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	if format := getStringFlag(cmd, "log-format"); format != "" {
		cfg.LogFormat = format
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// newApp loads and validates the configuration, sets up logging and the
// transport, and creates the homeserver client. With needSession the stored
// login is loaded and the client is authenticated.
func newApp(ctx context.Context, cmd *cobra.Command, needSession bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger, err := log.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
		now:    time.Now,
	}

	opts := []matrix.Option{matrix.WithUserAgent(userAgent())}
	if needSession {
		session, err := config.LoadSession(config.SessionPath(cfg.SessionDir))
		if err != nil {
			return nil, err
		}
		a.session = session
		opts = append(opts, matrix.WithAccessToken(session.AccessToken, session.UserID))
	}

	hc, err := a.httpClient(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	opts = append(opts, matrix.WithHTTPClient(hc))

	a.client, err = matrix.NewClient(cfg.HomeserverURL, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	history, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("run history unavailable", "dir", cfg.DBDir, "error", err)
	} else {
		a.history = history
	}
	return a, nil
}

// Close releases the history database and stops the embedded Tor daemon.
func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close run history", "error", err)
		}
		a.history = nil
	}
	if a.tor != nil {
		a.logger.Info("stopping embedded Tor daemon")
		if err := a.tor.Stop(); err != nil {
			a.logger.Error("failed to stop embedded Tor", "error", err)
		}
		a.tor = nil
	}
}

// httpClient returns the HTTP client for homeserver traffic: direct, through
// a SOCKS5 proxy, or through an embedded Tor daemon.
func (a *app) httpClient(ctx context.Context) (*http.Client, error) {
	cfg := a.cfg
	if !cfg.UsesProxy() {
		return &http.Client{Timeout: cfg.RequestTimeout}, nil
	}

	var (
		client *tor.Client
		err    error
	)
	if cfg.UsesEmbeddedTor() {
		a.logger.Info("starting embedded Tor daemon", "timeout", cfg.TorStartupTimeout)
		et := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := et.Start(ctx); err != nil {
			return nil, err
		}
		a.tor = et
		client, err = et.NewClient(cfg.RequestTimeout)
	} else {
		client, err = tor.NewClient(cfg.Proxy, cfg.RequestTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy client: %w", err)
	}

	target, err := hostPort(cfg.HomeserverURL)
	if err != nil {
		return nil, err
	}
	if status := client.CheckConnection(ctx, target); status != tor.ProxyStatusOK {
		return nil, fmt.Errorf("proxy check failed for %s: %w", client.ProxyAddress(), status.Err())
	}
	a.logger.Info("proxy connection verified", "proxy", client.ProxyAddress())
	return client.NewHTTPClient(), nil
}

// hostPort returns the host:port a homeserver URL connects to.
func hostPort(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", config.ErrInvalidHomeserver, err)
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// filter compiles the ignore patterns. The logged in account is always
// ignored as a member.
func (a *app) filter() (*filter.Filter, error) {
	own := ""
	if a.session != nil {
		own = a.session.UserID
	}
	f, err := filter.New(a.cfg.MemberIgnorePatterns, a.cfg.RoomIgnorePatterns, own)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return f, nil
}

// retryPolicy returns the member fetch retry policy.
func (a *app) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: a.cfg.MemberFetchAttempts,
		Backoff:     a.cfg.MemberFetchBackoff,
		Multiplier:  2,
	}
}

// controlRoomID resolves the configured control room to a room id.
func (a *app) controlRoomID(ctx context.Context) (string, error) {
	roomID, err := a.client.RoomID(ctx, a.cfg.ControlRoom)
	if err != nil {
		return "", fmt.Errorf("failed to resolve control room: %w", err)
	}
	return roomID, nil
}

// report prints text and posts it into the control room. A failed post is
// logged, the run itself has already succeeded.
func (a *app) report(ctx context.Context, text string) {
	fmt.Fprintln(a.out, text)

	roomID, err := a.controlRoomID(ctx)
	if err != nil {
		a.logger.Warn("failed to notify control room", "error", err)
		return
	}
	if _, err := a.client.SendText(ctx, roomID, text); err != nil {
		a.logger.Warn("failed to notify control room", "room", roomID, "error", err)
	}
}

// beginRun records a running run and returns its id, or an empty id when
// the history is unavailable.
func (a *app) beginRun(ctx context.Context, kind model.RunKind, startedAt time.Time) string {
	if a.history == nil {
		return ""
	}
	run, err := a.history.StartRun(ctx, kind, startedAt)
	if err != nil {
		a.logger.Warn("failed to record run", "error", err)
		return ""
	}
	return run.ID
}

// recordRun stores the final state of a run.
func (a *app) recordRun(run *model.Run) {
	if a.history == nil {
		return
	}
	// The run context may already be cancelled; the outcome is still recorded.
	if err := a.history.RecordRun(context.Background(), run); err != nil {
		a.logger.Warn("failed to record run", "error", err)
	}
}

package config

import (
	"net/url"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "traveller"

	// DefaultCrawlDelay is the pause before each member-list request.
	// These requests only reach the account's own homeserver.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultJoinDelay is the pause before each join. A join makes the
	// homeserver federate with the room's other servers, so it is paced far
	// more slowly than crawling to stay clear of remote rate limits.
	DefaultJoinDelay = 64 * time.Second

	// DefaultMemberFetchAttempts is one try plus one immediate retry.
	DefaultMemberFetchAttempts = 2

	// DefaultRequestTimeout bounds a single homeserver request.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultTorStartupTimeout bounds the bootstrap of an embedded Tor daemon.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultOutputDir is where run directories are created unless configured.
	DefaultOutputDir = "graph"

	// ProxyEmbedded selects the embedded Tor daemon as transport.
	ProxyEmbedded = "embedded"
)

// Log formats accepted by --log-format.
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

// DefaultMemberIgnorePatterns are accounts that sit silently in many rooms
// and would otherwise dominate the graph.
var DefaultMemberIgnorePatterns = []string{`@voyager:t2bot\.io`}

// DefaultRoomIgnorePatterns are alias namespaces of bridged networks.
var DefaultRoomIgnorePatterns = []string{`#twitter_#.*`}

// Config holds every option of a run. File-backed fields carry yaml and toml
// tags; the rest is set from command line flags.
type Config struct {
	// HomeserverURL is the base URL of the operator account's homeserver.
	HomeserverURL string `yaml:"homeserver_url" toml:"homeserver_url"`

	// ControlRoom is the room id or alias that receives run summaries and is
	// never left.
	ControlRoom string `yaml:"control_room" toml:"control_room"`

	CrawlDelay          time.Duration `yaml:"crawl_delay" toml:"crawl_delay"`
	JoinDelay           time.Duration `yaml:"join_delay" toml:"join_delay"`
	MemberFetchAttempts int           `yaml:"member_fetch_attempts" toml:"member_fetch_attempts"`
	MemberFetchBackoff  time.Duration `yaml:"member_fetch_backoff" toml:"member_fetch_backoff"`

	// MemberIgnorePatterns are matched against full user ids. The operator's
	// own account is always ignored in addition.
	MemberIgnorePatterns []string `yaml:"member_ignore_patterns" toml:"member_ignore_patterns"`

	// RoomIgnorePatterns are matched against room aliases before joining.
	RoomIgnorePatterns []string `yaml:"room_ignore_patterns" toml:"room_ignore_patterns"`

	// OutputDir receives one timestamped directory per crawl.
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// Proxy is empty for direct connections, a SOCKS5 host:port, or
	// "embedded" to start a private Tor daemon.
	Proxy string `yaml:"proxy" toml:"proxy"`

	RequestTimeout    time.Duration `yaml:"request_timeout" toml:"request_timeout"`
	TorStartupTimeout time.Duration `yaml:"tor_startup_timeout" toml:"tor_startup_timeout"`

	// DBDir holds the run history database. Empty means the XDG data dir.
	DBDir string `yaml:"db_dir" toml:"db_dir"`

	// SessionDir holds the login session. Empty means the XDG config dir.
	SessionDir string `yaml:"session_dir" toml:"session_dir"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"-" toml:"-"`

	// LogFormat is one of text, json or pretty.
	LogFormat string `yaml:"-" toml:"-"`

	// ConfigFilePath is the file the config was loaded from, if any.
	ConfigFilePath string `yaml:"-" toml:"-"`
}

// NewConfig returns a Config with default values. HomeserverURL and
// ControlRoom have no sensible default and must be configured.
func NewConfig() *Config {
	return &Config{
		CrawlDelay:           DefaultCrawlDelay,
		JoinDelay:            DefaultJoinDelay,
		MemberFetchAttempts:  DefaultMemberFetchAttempts,
		MemberIgnorePatterns: append([]string(nil), DefaultMemberIgnorePatterns...),
		RoomIgnorePatterns:   append([]string(nil), DefaultRoomIgnorePatterns...),
		OutputDir:            DefaultOutputDir,
		RequestTimeout:       DefaultRequestTimeout,
		TorStartupTimeout:    DefaultTorStartupTimeout,
		DBDir:                XDGDataDir(),
		LogFormat:            LogFormatText,
	}
}

// XDGDataDir returns the traveller's XDG data directory.
// On Linux: ~/.local/share/traveller
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the traveller's XDG config directory.
// On Linux: ~/.config/traveller
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// UsesProxy reports whether homeserver traffic goes through a proxy.
func (c *Config) UsesProxy() bool {
	return c.Proxy != ""
}

// UsesEmbeddedTor reports whether an embedded Tor daemon must be started.
func (c *Config) UsesEmbeddedTor() bool {
	return c.Proxy == ProxyEmbedded
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.HomeserverURL == "" {
		return ErrNoHomeserver
	}
	u, err := url.Parse(c.HomeserverURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidHomeserver
	}

	if c.ControlRoom == "" {
		return ErrNoControlRoom
	}
	if c.ControlRoom[0] != '!' && c.ControlRoom[0] != '#' {
		return ErrInvalidControlRoom
	}

	if c.CrawlDelay < 0 || c.JoinDelay < 0 {
		return ErrInvalidDelay
	}
	if c.MemberFetchAttempts < 1 {
		return ErrInvalidAttempts
	}
	if c.MemberFetchBackoff < 0 {
		return ErrInvalidDelay
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	for _, p := range append(append([]string(nil), c.MemberIgnorePatterns...), c.RoomIgnorePatterns...) {
		if _, err := regexp.Compile(p); err != nil {
			return ErrInvalidPattern
		}
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON, LogFormatPretty:
	default:
		return ErrInvalidLogFormat
	}
	return nil
}

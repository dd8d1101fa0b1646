package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig documents the defaults; a failing case means a default
// changed.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default CrawlDelay is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.CrawlDelay != 500*time.Millisecond {
			t.Errorf("expected CrawlDelay to be 500ms, got %v", cfg.CrawlDelay)
		}
	})

	t.Run("default JoinDelay is 64s", func(t *testing.T) {
		t.Parallel()
		if cfg.JoinDelay != 64*time.Second {
			t.Errorf("expected JoinDelay to be 64s, got %v", cfg.JoinDelay)
		}
	})

	t.Run("default member fetch retries once immediately", func(t *testing.T) {
		t.Parallel()
		if cfg.MemberFetchAttempts != 2 {
			t.Errorf("expected MemberFetchAttempts to be 2, got %d", cfg.MemberFetchAttempts)
		}
		if cfg.MemberFetchBackoff != 0 {
			t.Errorf("expected MemberFetchBackoff to be 0, got %v", cfg.MemberFetchBackoff)
		}
	})

	t.Run("default room ignore pattern covers bridged twitter rooms", func(t *testing.T) {
		t.Parallel()
		if len(cfg.RoomIgnorePatterns) != 1 || cfg.RoomIgnorePatterns[0] != `#twitter_#.*` {
			t.Errorf("unexpected RoomIgnorePatterns %v", cfg.RoomIgnorePatterns)
		}
	})

	t.Run("defaults are copies", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.RoomIgnorePatterns[0] = "changed"
		if DefaultRoomIgnorePatterns[0] == "changed" {
			t.Error("NewConfig shares the default pattern slice")
		}
	})

	t.Run("default transport is direct", func(t *testing.T) {
		t.Parallel()
		if cfg.UsesProxy() || cfg.UsesEmbeddedTor() {
			t.Error("expected no proxy by default")
		}
	})

	t.Run("default output dir and log format", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputDir != DefaultOutputDir {
			t.Errorf("expected OutputDir %q, got %q", DefaultOutputDir, cfg.OutputDir)
		}
		if cfg.LogFormat != LogFormatText {
			t.Errorf("expected LogFormat %q, got %q", LogFormatText, cfg.LogFormat)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.HomeserverURL = "https://matrix.example.org"
		cfg.ControlRoom = "#traveller-control:example.org"
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"missing homeserver", func(c *Config) { c.HomeserverURL = "" }, ErrNoHomeserver},
		{"homeserver without scheme", func(c *Config) { c.HomeserverURL = "matrix.example.org" }, ErrInvalidHomeserver},
		{"missing control room", func(c *Config) { c.ControlRoom = "" }, ErrNoControlRoom},
		{"control room is a user", func(c *Config) { c.ControlRoom = "@me:example.org" }, ErrInvalidControlRoom},
		{"negative crawl delay", func(c *Config) { c.CrawlDelay = -time.Second }, ErrInvalidDelay},
		{"negative join delay", func(c *Config) { c.JoinDelay = -time.Second }, ErrInvalidDelay},
		{"negative backoff", func(c *Config) { c.MemberFetchBackoff = -time.Second }, ErrInvalidDelay},
		{"zero attempts", func(c *Config) { c.MemberFetchAttempts = 0 }, ErrInvalidAttempts},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, ErrInvalidTimeout},
		{"bad member pattern", func(c *Config) { c.MemberIgnorePatterns = []string{"@(.*"} }, ErrInvalidPattern},
		{"bad room pattern", func(c *Config) { c.RoomIgnorePatterns = []string{"["} }, ErrInvalidPattern},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, ErrNoOutputDir},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("zero delays are valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CrawlDelay = 0
		cfg.JoinDelay = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestProxyModes(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Proxy = "127.0.0.1:9050"
	if !cfg.UsesProxy() || cfg.UsesEmbeddedTor() {
		t.Error("host:port proxy misdetected")
	}
	cfg.Proxy = ProxyEmbedded
	if !cfg.UsesProxy() || !cfg.UsesEmbeddedTor() {
		t.Error("embedded proxy misdetected")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads YAML on top of defaults", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "traveller.yaml", `
homeserver_url: https://matrix.example.org
control_room: "#control:example.org"
crawl_delay: 1s
member_ignore_patterns:
  - '@.*:weho\.st'
proxy: embedded
`)
		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HomeserverURL != "https://matrix.example.org" {
			t.Errorf("HomeserverURL = %q", cfg.HomeserverURL)
		}
		if cfg.ControlRoom != "#control:example.org" {
			t.Errorf("ControlRoom = %q", cfg.ControlRoom)
		}
		if cfg.CrawlDelay != time.Second {
			t.Errorf("CrawlDelay = %v, want 1s", cfg.CrawlDelay)
		}
		if cfg.JoinDelay != DefaultJoinDelay {
			t.Errorf("JoinDelay = %v, want default", cfg.JoinDelay)
		}
		if len(cfg.MemberIgnorePatterns) != 1 || cfg.MemberIgnorePatterns[0] != `@.*:weho\.st` {
			t.Errorf("MemberIgnorePatterns = %v", cfg.MemberIgnorePatterns)
		}
		if !cfg.UsesEmbeddedTor() {
			t.Error("expected embedded proxy")
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("ConfigFilePath = %q, want %q", cfg.ConfigFilePath, path)
		}
	})

	t.Run("loads TOML", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "traveller.toml", `
homeserver_url = "https://matrix.example.org"
control_room = "!abc:example.org"
join_delay = "2m"
member_fetch_attempts = 3
room_ignore_patterns = ['#irc_.*']
`)
		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.JoinDelay != 2*time.Minute {
			t.Errorf("JoinDelay = %v, want 2m", cfg.JoinDelay)
		}
		if cfg.MemberFetchAttempts != 3 {
			t.Errorf("MemberFetchAttempts = %d, want 3", cfg.MemberFetchAttempts)
		}
		if len(cfg.RoomIgnorePatterns) != 1 || cfg.RoomIgnorePatterns[0] != "#irc_.*" {
			t.Errorf("RoomIgnorePatterns = %v", cfg.RoomIgnorePatterns)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("empty YAML keeps defaults", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "traveller.yml", "")
		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.CrawlDelay != DefaultCrawlDelay {
			t.Errorf("CrawlDelay = %v, want default", cfg.CrawlDelay)
		}
	})

	t.Run("unknown YAML key is rejected", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "traveller.yaml", "homeserver: https://x\n")
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected an error for an unknown key")
		}
	})

	t.Run("unknown TOML key is rejected", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "traveller.toml", "homeserver = \"https://x\"\n")
		_, err := LoadConfigFile(path)
		if err == nil || !strings.Contains(err.Error(), "unknown keys") {
			t.Errorf("expected unknown keys error, got %v", err)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "traveller.yaml", "crawl_delay: [\n")
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "traveller.ron", "()")
		if _, err := LoadConfigFile(path); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "custom.yaml", "")
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("XDGDataDir() = %q", XDGDataDir())
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("XDGConfigDir() = %q", XDGConfigDir())
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SessionFile is the name of the stored login session.
const SessionFile = "session.yaml"

// Session is the stored login of the operator account.
type Session struct {
	AccessToken string `yaml:"access_token"`
	UserID      string `yaml:"user_id"`
	DeviceID    string `yaml:"device_id"`
}

// SessionPath returns the session file inside dir, or inside the XDG config
// directory when dir is empty.
func SessionPath(dir string) string {
	if dir == "" {
		dir = XDGConfigDir()
	}
	return filepath.Join(dir, SessionFile)
}

// LoadSession reads the session stored at path.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the config dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.AccessToken == "" || s.UserID == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

// SaveSession writes s to path, readable by the owner only.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

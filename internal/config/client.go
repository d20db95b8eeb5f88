package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BrandonDHaskell/Portunus/condo/internal/logger"
)

const (
	// DefaultClientDir is the directory under the user config dir.
	DefaultClientDir = "condoctl"
	// DefaultClientFile is the default config file name.
	DefaultClientFile = "config.yaml"
)

// ClientConfig holds condoctl settings.
type ClientConfig struct {
	APIURL   string        `yaml:"api_url,omitempty"`
	Timezone string        `yaml:"timezone,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`

	// PersistMarkRead makes "alerts read" call the server as well as
	// updating the local list.
	PersistMarkRead bool `yaml:"persist_mark_read,omitempty"`

	Refresh RefreshConfig `yaml:"refresh,omitempty"`
	Logging logger.Config `yaml:"logging,omitempty"`

	// ViewsFile optionally overrides entries of the built-in view table.
	ViewsFile string `yaml:"views_file,omitempty"`

	// SessionFile defaults to session.yaml next to the config file.
	SessionFile string `yaml:"session_file,omitempty"`
}

type RefreshConfig struct {
	Alerts    time.Duration `yaml:"alerts,omitempty"`
	Dashboard time.Duration `yaml:"dashboard,omitempty"`
}

// DefaultClient returns a ClientConfig with default values.
func DefaultClient() *ClientConfig {
	return &ClientConfig{
		APIURL:   "http://localhost:8080",
		Timezone: "Local",
		Timeout:  10 * time.Second,
		Refresh: RefreshConfig{
			Alerts:    30 * time.Second,
			Dashboard: 60 * time.Second,
		},
		Logging: logger.Config{Level: "warn", Output: "console"},
	}
}

// ClientDir returns $XDG_CONFIG_HOME/condoctl (or the platform equivalent).
func ClientDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(base, DefaultClientDir), nil
}

// LoadClient reads path, or the default location when path is empty.
// A missing file yields the defaults.  Environment overrides are applied
// last.
func LoadClient(path string) (*ClientConfig, error) {
	if path == "" {
		dir, err := ClientDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, DefaultClientFile)
	}

	cfg := DefaultClient()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = filepath.Join(filepath.Dir(path), "session.yaml")
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *ClientConfig) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("CONDO_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CONDO_TIMEZONE")); v != "" {
		c.Timezone = v
	}
}

// Location resolves Timezone.  "Local" and "" mean the machine's zone.
func (c *ClientConfig) Location() (*time.Location, error) {
	return LoadLocation(c.Timezone)
}

func LoadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}

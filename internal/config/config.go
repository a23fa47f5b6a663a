// ABOUTME: makeweight configuration: JSON file, .env file, and environment overrides.
// ABOUTME: Resolves the data directory and database path for the CLI and servers.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/storage"
)

// Config stores makeweight configuration. Environment variables win over the file.
type Config struct {
	// DataDir is the root directory for data storage; makeweight.db lives here.
	// Supports ~ expansion. Defaults to ~/.local/share/makeweight.
	DataDir string `json:"data_dir,omitempty" env:"MAKEWEIGHT_DATA_DIR"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"MAKEWEIGHT_LOG_LEVEL" env-default:"info"`

	// Sync mirrors every write to Charm KV.
	Sync bool `json:"sync,omitempty" env:"MAKEWEIGHT_SYNC"`

	// CharmHost is the Charm server used when Sync is on.
	CharmHost string `json:"charm_host,omitempty" env:"MAKEWEIGHT_CHARM_HOST" env-default:"charm.2389.dev"`

	// Listen is the HTTP API address for `makeweight serve`.
	Listen string `json:"listen,omitempty" env:"MAKEWEIGHT_LISTEN" env-default:"127.0.0.1:8787"`

	// AllowedOrigins is a comma-separated CORS allow list.
	AllowedOrigins string `json:"allowed_origins,omitempty" env:"MAKEWEIGHT_CORS_ORIGINS" env-default:"*"`

	// ActivityLevel is the default for profiles that don't set one.
	ActivityLevel string `json:"activity_level,omitempty" env:"MAKEWEIGHT_ACTIVITY"`
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DefaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	return storage.DefaultDBPath(c.GetDataDir())
}

// Origins splits AllowedOrigins into a list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.ActivityLevel != "" && !engine.IsValidActivityLevel(c.ActivityLevel) {
		return fmt.Errorf("invalid activity_level %q", c.ActivityLevel)
	}
	return nil
}

// OpenStorage opens the SQLite repository in the data directory.
func (c *Config) OpenStorage(opts ...storage.Option) (*storage.DB, error) {
	return storage.Open(c.DBPath(), opts...)
}

// DefaultDataDir returns the XDG data directory for makeweight.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "makeweight")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "makeweight", "config.json")
}

// Load reads .env from the working directory when present, then the config
// file, then environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	path := GetConfigPath()
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

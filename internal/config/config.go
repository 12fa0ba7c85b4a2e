// Package config loads the calendart configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint = "https://www.googleapis.com"
	DefaultCalendar = "primary"
)

// SyncConfig configures the sync command.
type SyncConfig struct {
	// Schedule is a cron expression; empty runs a single synchronisation.
	Schedule    string `yaml:"schedule,omitempty"`
	ShowDeleted bool   `yaml:"show_deleted"`
}

// Config is the calendart configuration.
type Config struct {
	Endpoint     string     `yaml:"endpoint"`
	TokenFile    string     `yaml:"token_file,omitempty"`
	ClientID     string     `yaml:"client_id,omitempty"`
	ClientSecret string     `yaml:"client_secret,omitempty"`
	Calendar     string     `yaml:"calendar"`
	UserEmails   []string   `yaml:"user_emails,omitempty"`
	StateFile    string     `yaml:"state_file,omitempty"`
	MetricsAddr  string     `yaml:"metrics_addr,omitempty"`
	Sync         SyncConfig `yaml:"sync"`

	// AccessToken is only read from GOOGLE_ACCESS_TOKEN and never saved.
	AccessToken string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Calendar: DefaultCalendar,
		Sync:     SyncConfig{ShowDeleted: true},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/calendart/config.yaml, or its
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "calendart", "config.yaml"), nil
}

// DefaultStateFile returns the sync state path next to the cached token.
func DefaultStateFile() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(dir, "calendart", "sync-state.yaml"), nil
}

// Load reads the configuration at path. A missing file is created with the
// defaults on first run. Environment overrides are applied last and are not
// written back.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// Save writes cfg atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return WriteFileAtomic(path, data)
}

func (c *Config) applyEnv() {
	c.Endpoint = getEnvOrDefault("CALENDART_ENDPOINT", c.Endpoint)
	c.TokenFile = getEnvOrDefault("CALENDART_TOKEN_FILE", c.TokenFile)
	c.Calendar = getEnvOrDefault("CALENDART_CALENDAR", c.Calendar)
	c.ClientID = getEnvOrDefault("GOOGLE_CLIENT_ID", c.ClientID)
	c.ClientSecret = getEnvOrDefault("GOOGLE_CLIENT_SECRET", c.ClientSecret)
	c.AccessToken = getEnvOrDefault("GOOGLE_ACCESS_TOKEN", c.AccessToken)
}

func (c *Config) normalize() {
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Calendar == "" {
		c.Calendar = DefaultCalendar
	}
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory. The parent directory is created with 0700 permissions.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

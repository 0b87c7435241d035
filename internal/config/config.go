// Package config handles the XDG configuration directory and the persisted
// settings record.
package config

import (
	"os"
	"path/filepath"

	"optisheet/internal/log"
)

const (
	// AppName is the application directory name.
	AppName = "optisheet"

	// SettingsFile is the persisted settings filename.
	SettingsFile = "config.yaml"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// LogJSON switches the log format to JSON.
	LogJSON bool

	// Logger is set by the dispatcher once the common flags are parsed.
	Logger log.Logger

	// Settings is the persisted settings record with environment
	// overrides applied.
	Settings Settings
}

// New creates a new Config with the default or specified config directory
// and loads the settings file from it.
// If configDir is empty, uses XDG_CONFIG_HOME/optisheet or $HOME/.config/optisheet.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Logger: log.Noop}

	settings, err := LoadSettings(cfg.SettingsPath())
	if err != nil {
		return nil, err
	}
	settings.applyEnvOverrides()
	cfg.Settings = *settings

	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSettings checks if the settings file exists.
func (c *Config) HasSettings() bool {
	_, err := os.Stat(c.SettingsPath())
	return err == nil
}

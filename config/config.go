package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const appName = "midi-live-vis"

// InputConfig selects MIDI inputs
type InputConfig struct {
	Include    []string `json:"include,omitempty"` // port name substrings, empty = all
	Exclude    []string `json:"exclude,omitempty"`
	PollMillis int      `json:"pollMillis,omitempty"`
}

// ViewConfig stores chart preferences
type ViewConfig struct {
	WindowSeconds    float64 `json:"windowSeconds,omitempty"`
	FPS              int     `json:"fps,omitempty"`
	OverviewFraction float64 `json:"overviewFraction,omitempty"`
	Labels           string  `json:"labels,omitempty"`  // "pitch" or "note"
	Palette          string  `json:"palette,omitempty"` // builtin name or .gpl file
	ShowAllTime      bool    `json:"showAllTime"`
}

// Config is the main configuration structure
type Config struct {
	Input    InputConfig `json:"input"`
	View     ViewConfig  `json:"view"`
	HTTPAddr string      `json:"httpAddr,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			// virtual/system ports are never auto-connected
			Exclude:    []string{"Midi Through", "Through Port", "Dummy"},
			PollMillis: 1000,
		},
		View: ViewConfig{
			WindowSeconds:    20,
			FPS:              30,
			OverviewFraction: 0.25,
			Labels:           "pitch",
			Palette:          "category10",
		},
	}
}

// PollInterval is the device rescan interval
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Input.PollMillis) * time.Millisecond
}

// Validate checks ranges of the loaded values
func (c *Config) Validate() error {
	if c.View.WindowSeconds <= 0 {
		return fmt.Errorf("windowSeconds must be positive, got %v", c.View.WindowSeconds)
	}
	if c.View.FPS < 1 || c.View.FPS > 120 {
		return fmt.Errorf("fps must be between 1 and 120, got %d", c.View.FPS)
	}
	if c.View.OverviewFraction <= 0 || c.View.OverviewFraction >= 1 {
		return fmt.Errorf("overviewFraction must be between 0 and 1, got %v", c.View.OverviewFraction)
	}
	if c.View.Labels != "pitch" && c.View.Labels != "note" {
		return fmt.Errorf("labels must be pitch or note, got %q", c.View.Labels)
	}
	if c.Input.PollMillis < 50 {
		return fmt.Errorf("pollMillis must be at least 50, got %d", c.Input.PollMillis)
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogPath returns the debug log location
func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "debug.log"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path on top of the defaults
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

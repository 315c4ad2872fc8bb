// Package config handles loading lt configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/linktree/config.yaml
//
// Command-line flags override the LT_DATA_DIR environment variable, which
// overrides the config file, which overrides DefaultConfig.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataDirEnvVar names the environment variable overriding DataDir.
const DataDirEnvVar = "LT_DATA_DIR"

// MaxDepthLimit bounds the traversal depth a user may request.
const MaxDepthLimit = 16

// DefaultPattern is the console line template.
const DefaultPattern = "{{prefix}} {{link_name}} {{key}} {{summary}} [{{status_name}}]\n"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// WindowConfig bounds the batch prefetch of issues around the root.
type WindowConfig struct {
	StartAt    int `yaml:"start_at"`
	MaxResults int `yaml:"max_results"`
}

// FilterConfig holds default filters; empty lists mean "not configured".
type FilterConfig struct {
	Links    []string `yaml:"links,omitempty"`
	Projects []string `yaml:"projects,omitempty"`
	Statuses []string `yaml:"statuses,omitempty"`
}

// ServeConfig configures the web shell.
type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// UIConfig holds console presentation settings.
type UIConfig struct {
	SummaryWidth int    `yaml:"summary_width,omitempty"` // 0 disables truncation
	Color        string `yaml:"color,omitempty"`         // auto, always, never
}

// Config is the top-level configuration for lt.
type Config struct {
	Depth   int          `yaml:"depth"`
	Pattern string       `yaml:"pattern,omitempty"`
	Marker  string       `yaml:"marker,omitempty"`
	DataDir string       `yaml:"data_dir,omitempty"`
	Window  WindowConfig `yaml:"window"`
	Filters FilterConfig `yaml:"filters,omitempty"`
	Serve   ServeConfig  `yaml:"serve,omitempty"`
	UI      UIConfig     `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Depth:   2,
		Pattern: DefaultPattern,
		Marker:  "-",
		Window: WindowConfig{
			StartAt:    0,
			MaxResults: 1000,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// ConfigDir returns the XDG config directory for lt.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "linktree")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "linktree")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return withEnv(DefaultConfig()), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return withEnv(cfg), nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	return withEnv(cfg), nil
}

func withEnv(cfg Config) Config {
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		cfg.DataDir = expandHome(dir)
	}
	return cfg
}

// Validate reports the first problem that would make a run meaningless.
func (c Config) Validate() error {
	if c.Depth < 1 || c.Depth > MaxDepthLimit {
		return fmt.Errorf("%w: depth must be between 1 and %d, got %d", ErrInvalid, MaxDepthLimit, c.Depth)
	}
	if strings.TrimSpace(c.Pattern) == "" {
		return fmt.Errorf("%w: pattern cannot be empty", ErrInvalid)
	}
	if c.Marker == "" {
		return fmt.Errorf("%w: marker cannot be empty", ErrInvalid)
	}
	if c.Window.StartAt < 0 {
		return fmt.Errorf("%w: window.start_at cannot be negative", ErrInvalid)
	}
	if c.Window.MaxResults <= 0 {
		return fmt.Errorf("%w: window.max_results must be positive", ErrInvalid)
	}
	switch c.UI.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%w: ui.color must be auto, always or never, got %q", ErrInvalid, c.UI.Color)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Depth != 2 {
		t.Errorf("expected default depth 2, got %d", cfg.Depth)
	}
	if cfg.Pattern != DefaultPattern {
		t.Errorf("expected default pattern, got %q", cfg.Pattern)
	}
	if cfg.Window.MaxResults != 1000 || cfg.Window.StartAt != 0 {
		t.Errorf("unexpected window defaults: %+v", cfg.Window)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	t.Setenv(DataDirEnvVar, "")
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Depth != 2 {
		t.Errorf("expected default config, got depth %d", cfg.Depth)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	t.Setenv(DataDirEnvVar, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
depth: 4
marker: "*"
data_dir: ~/tracker
window:
  start_at: 10
  max_results: 50
filters:
  links: [blocks, "is blocked by"]
  statuses: [Open]
serve:
  addr: "127.0.0.1:9000"
ui:
  summary_width: 40
  color: never
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Depth != 4 || cfg.Marker != "*" {
		t.Errorf("unexpected depth/marker: %d %q", cfg.Depth, cfg.Marker)
	}
	if cfg.Pattern != DefaultPattern {
		t.Errorf("unset pattern should keep default, got %q", cfg.Pattern)
	}
	home, _ := os.UserHomeDir()
	if cfg.DataDir != filepath.Join(home, "tracker") {
		t.Errorf("expected expanded data dir, got %q", cfg.DataDir)
	}
	if cfg.Window.StartAt != 10 || cfg.Window.MaxResults != 50 {
		t.Errorf("unexpected window: %+v", cfg.Window)
	}
	if len(cfg.Filters.Links) != 2 || cfg.Filters.Links[1] != "is blocked by" {
		t.Errorf("unexpected link filters: %v", cfg.Filters.Links)
	}
	if cfg.Serve.Addr != "127.0.0.1:9000" {
		t.Errorf("unexpected addr %q", cfg.Serve.Addr)
	}
	if cfg.UI.SummaryWidth != 40 || cfg.UI.Color != "never" {
		t.Errorf("unexpected ui: %+v", cfg.UI)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("depth: [nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFrom_EnvOverridesDataDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /from/file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(DataDirEnvVar, "/from/env")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("expected env to win, got %q", cfg.DataDir)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigPath(); got != filepath.Join("/tmp/xdg", "linktree", "config.yaml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero depth", func(c *Config) { c.Depth = 0 }},
		{"depth over limit", func(c *Config) { c.Depth = MaxDepthLimit + 1 }},
		{"blank pattern", func(c *Config) { c.Pattern = "  " }},
		{"empty marker", func(c *Config) { c.Marker = "" }},
		{"negative start", func(c *Config) { c.Window.StartAt = -1 }},
		{"zero max results", func(c *Config) { c.Window.MaxResults = 0 }},
		{"bad color", func(c *Config) { c.UI.Color = "sometimes" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

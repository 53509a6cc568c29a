package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", s.Logging.Level, "info")
	}
	if s.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want %q", s.Logging.Format, "console")
	}
	if s.Plugins.Dir != "" {
		t.Errorf("Plugins.Dir = %q, want empty", s.Plugins.Dir)
	}
	if s.Session.Disabled {
		t.Error("Session.Disabled = true, want false")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
plugins:
  dir: /opt/hookline/plugins
logging:
  level: debug
  format: json
session:
  dir: /var/log/hookline
  disabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Plugins.Dir != "/opt/hookline/plugins" {
		t.Errorf("Plugins.Dir = %q", s.Plugins.Dir)
	}
	if s.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", s.Logging.Level, "debug")
	}
	if s.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", s.Logging.Format, "json")
	}
	if s.Session.Dir != "/var/log/hookline" {
		t.Errorf("Session.Dir = %q", s.Session.Dir)
	}
	if !s.Session.Disabled {
		t.Error("Session.Disabled = false, want true")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
plugins:
  dir: /from/file
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HOOKLINE_LOGGING_LEVEL", "error")
	t.Setenv("HOOKLINE_PLUGINS_DIR", "/from/env")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want env override %q", s.Logging.Level, "error")
	}
	if s.Plugins.Dir != "/from/env" {
		t.Errorf("Plugins.Dir = %q, want env override %q", s.Plugins.Dir, "/from/env")
	}
	// File values without env overrides survive.
	if s.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want default %q", s.Logging.Format, "console")
	}
}

func TestLoadSessionDisabledFromEnv(t *testing.T) {
	t.Setenv("HOOKLINE_SESSION_DISABLED", "true")

	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !s.Session.Disabled {
		t.Error("Session.Disabled = false, want true from environment")
	}
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.Logging.Level != "info" || s.Logging.Format != "console" {
		t.Errorf("Default() logging = %q/%q, want info/console", s.Logging.Level, s.Logging.Format)
	}
	if s.Plugins.Dir != "" {
		t.Errorf("Default() Plugins.Dir = %q, want empty", s.Plugins.Dir)
	}
	if s.Session.Disabled {
		t.Error("Default() Session.Disabled = true, want false")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("plugins: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() with malformed YAML should return error")
	}
}

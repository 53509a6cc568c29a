package main

import (
	"os"
	"path/filepath"
	"testing"
)

// execute runs the CLI in-process and restores flag and config state
// afterwards so tests do not leak into each other.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(func() {
		flagPluginsDir = ""
		flagConfig = ""
		flagVerbose = false
		flagQuiet = false
		flagNoLog = false
		cfg = nil
		rootCmd.SetArgs(nil)
	})
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Hook scripts pipe through dispatch unconditionally, so a broken
// config file must never make it exit non-zero.
func TestDispatchSurvivesBrokenConfig(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{name: "unparseable yaml", config: "logging: [unclosed"},
		{name: "invalid log format", config: "logging:\n  format: text\n"},
		{name: "invalid log level", config: "logging:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.config)
			err := execute(t,
				"--config", path,
				"--plugins-dir", t.TempDir(),
				"dispatch", "--no-log", "PreToolUse")
			if err != nil {
				t.Errorf("dispatch with broken config returned %v, want nil", err)
			}
		})
	}
}

func TestDispatchWithoutConfigFile(t *testing.T) {
	err := execute(t,
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--plugins-dir", t.TempDir(),
		"dispatch", "--no-log", "SessionStart")
	if err != nil {
		t.Errorf("dispatch returned %v, want nil", err)
	}
}

// Inspection commands keep surfacing configuration errors; only the
// dispatch path degrades.
func TestPluginsListSurfacesBrokenConfig(t *testing.T) {
	path := writeConfig(t, "logging: [unclosed")
	err := execute(t, "--config", path, "--plugins-dir", t.TempDir(), "plugins", "list")
	if err == nil {
		t.Error("plugins list with broken config returned nil, want error")
	}
}

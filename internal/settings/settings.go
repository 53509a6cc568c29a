// Package settings loads hookline configuration.
//
// Precedence, highest to lowest:
//  1. HOOKLINE_* environment variables
//  2. YAML config file
//  3. Built-in defaults
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces hookline environment variables, for example
// HOOKLINE_PLUGINS_DIR or HOOKLINE_LOGGING_LEVEL.
const envPrefix = "HOOKLINE_"

// Settings is the full configuration tree.
type Settings struct {
	Plugins PluginsSettings `koanf:"plugins"`
	Logging LoggingSettings `koanf:"logging"`
	Session SessionSettings `koanf:"session"`
}

// PluginsSettings configures the plugin manager.
type PluginsSettings struct {
	// Dir is the plugins root. Empty means resolve the default
	// location at manager construction.
	Dir string `koanf:"dir"`
}

// LoggingSettings configures the process logger.
type LoggingSettings struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SessionSettings configures the per-session event log.
type SessionSettings struct {
	// Dir is where session logs are written. Empty means the default
	// location.
	Dir string `koanf:"dir"`
	// Disabled turns off session logging entirely.
	Disabled bool `koanf:"disabled"`
}

// DefaultConfigPath resolves the config file location: a project-local
// .hookline/config.yaml when present, otherwise the user-level one.
func DefaultConfigPath() string {
	local := filepath.Join(".hookline", "config.yaml")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return local
	}
	return filepath.Join(home, ".config", "hookline", "config.yaml")
}

// Load reads settings from the YAML file at configPath, then overlays
// HOOKLINE_* environment variables. An empty configPath uses the
// default location; a missing file is not an error, the defaults and
// environment still apply.
func Load(configPath string) (*Settings, error) {
	k := koanf.New(".")

	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	if content, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// HOOKLINE_PLUGINS_DIR -> plugins.dir, HOOKLINE_LOGGING_LEVEL ->
	// logging.level: strip the prefix, split at the first underscore
	// into section and field.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&s)
	return &s, nil
}

// Default returns the built-in configuration, for callers that must
// keep going when loading fails.
func Default() *Settings {
	var s Settings
	applyDefaults(&s)
	return &s
}

// applyDefaults fills in values the file and environment left unset.
func applyDefaults(s *Settings) {
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Logging.Format == "" {
		s.Logging.Format = "console"
	}
}

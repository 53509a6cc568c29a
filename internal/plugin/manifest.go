package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// ManifestFileName is the metadata document every plugin directory
	// must contain. A directory without one is not a plugin.
	ManifestFileName = "plugin.json"

	// DefaultPriority is assumed when a manifest omits priority.
	DefaultPriority = 50
)

// namePattern validates plugin names: lowercase letters, digits and
// underscores, starting with a letter.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Manifest is a plugin's parsed plugin.json.
type Manifest struct {
	Name              string   `json:"name"`
	Version           string   `json:"version"`
	EntryPoint        string   `json:"entry_point"`
	Description       string   `json:"description"`
	Author            string   `json:"author"`
	Enabled           bool     `json:"enabled"`
	Priority          int      `json:"priority"`
	Hooks             []string `json:"hooks"`
	MinManagerVersion string   `json:"min_manager_version"`
	ConfigFile        string   `json:"config_file"`
	Dependencies      []string `json:"dependencies"`

	// dir is the plugin directory the manifest was loaded from; raw is
	// the original document, kept for schema validation.
	dir string
	raw []byte
}

// ParseManifest decodes a manifest document. Absent optional fields
// keep their defaults: enabled true, priority 50, hooks empty (which
// subscribes the plugin to every event). Unknown keys are ignored.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{Enabled: true, Priority: DefaultPriority}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	m.raw = data
	return m, nil
}

// LoadManifestFromDir reads and parses plugin.json from a plugin
// directory.
func LoadManifestFromDir(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	m.dir = dir
	return m, nil
}

// Validate checks the manifest fields in a fixed order: required
// fields present, name format, version format, entry point shape. The
// first failure wins and is reported alone.
func (m *Manifest) Validate() error {
	var missing []string
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Version == "" {
		missing = append(missing, "version")
	}
	if m.EntryPoint == "" {
		missing = append(missing, "entry_point")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, m.Name)
	}
	if _, err := parseVersion(m.Version); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, m.Version)
	}
	if _, _, err := m.entryParts(); err != nil {
		return err
	}
	return nil
}

// entryParts splits entry_point at its first colon into the module
// path and the callable name. Both halves must be non-empty.
func (m *Manifest) entryParts() (string, string, error) {
	mod, fn, ok := strings.Cut(m.EntryPoint, ":")
	if !ok || mod == "" || fn == "" {
		return "", "", fmt.Errorf("%w: %q (want \"module.path:callable\")", ErrInvalidEntryPoint, m.EntryPoint)
	}
	return mod, fn, nil
}

// Dir returns the directory the manifest was loaded from, empty for
// manifests parsed from raw bytes.
func (m *Manifest) Dir() string {
	return m.dir
}

// HookList returns a copy of the manifest's hook subscriptions. Empty
// means the plugin receives every event.
func (m *Manifest) HookList() []string {
	out := make([]string, len(m.Hooks))
	copy(out, m.Hooks)
	return out
}

// String returns "name vX.Y.Z" for logs and listings.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s v%s", m.Name, m.Version)
}

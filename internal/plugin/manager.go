package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ManagerVersion is the dispatcher's own version, checked against
// manifests' min_manager_version during loading.
const ManagerVersion = "1.2.0"

// DefaultPluginsDir resolves the plugins root: the project-local
// .hookline/plugins directory when one exists under the working
// directory, otherwise the user-level config location.
func DefaultPluginsDir() string {
	local := filepath.Join(".hookline", "plugins")
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return local
	}
	return filepath.Join(home, ".config", "hookline", "plugins")
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRoot sets the plugins root directory.
func WithRoot(dir string) ManagerOption {
	return func(m *Manager) {
		if dir != "" {
			m.root = dir
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithManagerVersion overrides the version advertised to plugins.
func WithManagerVersion(v string) ManagerOption {
	return func(m *Manager) {
		if v != "" {
			m.version = v
		}
	}
}

// WithRuntime swaps the plugin code runtime.
func WithRuntime(rt Runtime) ManagerOption {
	return func(m *Manager) {
		if rt != nil {
			m.runtime = rt
		}
	}
}

// Manager owns the plugin registry. Plugins enter the registry only
// through a full scan, at construction or on Reload; dispatch reads a
// sorted snapshot under a read lock, so reloading between events is
// safe.
type Manager struct {
	mu      sync.RWMutex
	root    string
	version string
	runtime Runtime
	log     *zap.Logger
	loader  *Loader
	plugins map[string]*Plugin
	issues  []LoadIssue
}

// NewManager builds a manager and immediately scans the plugins root.
// Construction never fails: an unreadable root leaves an empty
// registry with the failure recorded in Issues.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		root:    DefaultPluginsDir(),
		version: ManagerVersion,
		runtime: NewLuaRuntime(),
		log:     zap.NewNop(),
		plugins: make(map[string]*Plugin),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.loader = newLoader(m.root, m.runtime, m.version, m.log)

	m.mu.Lock()
	m.scanLocked()
	m.mu.Unlock()
	return m
}

// scanLocked rescans the root into the registry. Caller holds the
// write lock and has emptied m.plugins.
func (m *Manager) scanLocked() {
	plugins, issues := m.loader.Discover()
	m.issues = issues
	for _, p := range plugins {
		if prev, exists := m.plugins[p.Name()]; exists {
			// Two directories claiming one name: the later one in scan
			// order wins.
			m.log.Warn("duplicate plugin name",
				zap.String("plugin", p.Name()),
				zap.String("kept", p.Manifest().Dir()),
				zap.String("shadowed", prev.Manifest().Dir()))
			_ = prev.Close()
		}
		m.plugins[p.Name()] = p
	}
	m.log.Info("plugin scan complete",
		zap.String("dir", m.root),
		zap.Int("plugins", len(m.plugins)),
		zap.Int("skipped", len(m.issues)))
}

// ExecuteHook dispatches one event to every registered plugin, in
// priority order (ascending, ties broken by name), and returns how
// many handlers ran successfully. One failing handler never stops the
// sweep; disabled and unsubscribed plugins are skipped without
// counting.
func (m *Manager) ExecuteHook(hookType string, payload map[string]any) int {
	if payload == nil {
		payload = map[string]any{}
	}

	ordered := m.Plugins()

	succeeded := 0
	for _, p := range ordered {
		if p.Execute(hookType, payload) {
			succeeded++
		}
	}
	return succeeded
}

// Reload closes every plugin, empties the registry and rescans the
// root. Returns the number of plugins registered after the rescan.
func (m *Manager) Reload() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.plugins {
		if err := p.Close(); err != nil {
			m.log.Warn("closing plugin", zap.String("plugin", p.Name()), zap.Error(err))
		}
	}
	m.plugins = make(map[string]*Plugin)
	m.issues = nil
	m.scanLocked()
	return len(m.plugins)
}

// Plugins returns the registered plugins in dispatch order.
func (m *Manager) Plugins() []*Plugin {
	m.mu.RLock()
	out := make([]*Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		out = append(out, p)
	}
	m.mu.RUnlock()

	sortPlugins(out)
	return out
}

// Plugin returns a registered plugin by manifest name.
func (m *Manager) Plugin(name string) (*Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plugins[name]
	return p, ok
}

// Count returns the number of registered plugins.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}

// Issues returns the candidates skipped by the most recent scan.
func (m *Manager) Issues() []LoadIssue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LoadIssue, len(m.issues))
	copy(out, m.issues)
	return out
}

// Root returns the plugins root directory.
func (m *Manager) Root() string {
	return m.root
}

// Version returns the manager version advertised to plugins.
func (m *Manager) Version() string {
	return m.version
}

// Loader exposes the manager's loader for one-off candidate checks.
func (m *Manager) Loader() *Loader {
	return m.loader
}

// Close closes every registered plugin and empties the registry.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, p := range m.plugins {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.Name(), err))
		}
	}
	m.plugins = make(map[string]*Plugin)
	return errors.Join(errs...)
}

// sortPlugins orders plugins for dispatch: priority ascending, name
// as the tie break. The order is total, so dispatch is deterministic
// for a given registry.
func sortPlugins(ps []*Plugin) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Priority() != ps[j].Priority() {
			return ps[i].Priority() < ps[j].Priority()
		}
		return ps[i].Name() < ps[j].Name()
	})
}
